package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dl-alexandre/gxlib/internal/types"
	"github.com/dl-alexandre/gxlib/internal/utils"
)

type createFolderRequest struct {
	CreateType  string `json:"create_type"`
	FolderID    string `json:"folder_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type linkFilesRequest struct {
	CreateType      string `json:"create_type"`
	FolderID        string `json:"folder_id"`
	UploadOption    string `json:"upload_option"`
	FilesystemPaths string `json:"filesystem_paths"`
	LinkDataOnly    string `json:"link_data_only"`
	FileType        string `json:"file_type"`
	DBKey           string `json:"dbkey"`
}

func contentsPath(libraryID string) string {
	return "/api/libraries/" + url.PathEscape(libraryID) + "/contents"
}

// CreateFolder creates a folder named name at the root of the library
func (c *Client) CreateFolder(ctx context.Context, libraryID, name string) (*types.LibraryFolder, error) {
	lib, err := c.GetLibrary(ctx, libraryID)
	if err != nil {
		return nil, err
	}
	if lib.RootFolderID == "" {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeServerError,
			fmt.Sprintf("library %s has no root folder", libraryID)).Build())
	}

	reqCtx := NewRequestContext(types.RequestTypeMutation)
	reqCtx.LibraryID = libraryID
	reqCtx.FolderID = lib.RootFolderID
	reqCtx.Path = name

	body := createFolderRequest{
		CreateType: utils.CreateTypeFolder,
		FolderID:   lib.RootFolderID,
		Name:       name,
	}
	created, err := Execute(ctx, c, reqCtx, func(ctx context.Context) ([]*types.LibraryFolder, error) {
		var folders []*types.LibraryFolder
		err := c.do(ctx, http.MethodPost, contentsPath(libraryID), nil, body, &folders)
		return folders, err
	})
	if err != nil {
		return nil, err
	}
	if len(created) == 0 || created[0].ID == "" {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeServerError,
			fmt.Sprintf("galaxy returned no folder for %q", name)).Build())
	}
	return created[0], nil
}

// LinkFiles registers paths, which must be readable by the Galaxy server,
// as datasets in folderID without copying their contents.
func (c *Client) LinkFiles(ctx context.Context, libraryID, folderID string, paths []string) ([]*types.LibraryDataset, error) {
	reqCtx := NewRequestContext(types.RequestTypeUploadRef)
	reqCtx.LibraryID = libraryID
	reqCtx.FolderID = folderID

	body := linkFilesRequest{
		CreateType:      utils.CreateTypeFile,
		FolderID:        folderID,
		UploadOption:    utils.UploadOptionPaths,
		FilesystemPaths: strings.Join(paths, "\n"),
		LinkDataOnly:    utils.LinkDataOnly,
		FileType:        utils.DefaultFileType,
		DBKey:           utils.DefaultDBKey,
	}
	return Execute(ctx, c, reqCtx, func(ctx context.Context) ([]*types.LibraryDataset, error) {
		var datasets []*types.LibraryDataset
		err := c.do(ctx, http.MethodPost, contentsPath(libraryID), nil, body, &datasets)
		return datasets, err
	})
}
