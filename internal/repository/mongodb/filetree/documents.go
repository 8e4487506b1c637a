package filetree

import (
	"time"

	models "foldervault/internal/domain/models/filetree"
)

// rootKey marks the single root document; see the sparse unique index on rootKey
const rootKey = "root"

type folderDocument struct {
	ID        string    `bson:"_id"`
	ParentID  *string   `bson:"parentId"`
	RootKey   string    `bson:"rootKey,omitempty"`
	Name      string    `bson:"name"`
	Icon      *string   `bson:"icon"`
	Children  []string  `bson:"children"`
	Files     []string  `bson:"files"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d *folderDocument) toModel() *models.Folder {
	folder := &models.Folder{
		ID:        d.ID,
		Name:      d.Name,
		ParentID:  d.ParentID,
		Icon:      d.Icon,
		Children:  d.Children,
		Files:     d.Files,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	if folder.Children == nil {
		folder.Children = []string{}
	}
	if folder.Files == nil {
		folder.Files = []string{}
	}
	return folder
}

type fileDocument struct {
	ID         string    `bson:"_id"`
	Name       string    `bson:"name"`
	Size       int64     `bson:"size"`
	MimeType   string    `bson:"mimeType"`
	StorageKey string    `bson:"storageKey"`
	FolderID   string    `bson:"folderId"`
	CreatedAt  time.Time `bson:"createdAt"`
}

func (d *fileDocument) toModel() models.File {
	return models.File{
		ID:         d.ID,
		Name:       d.Name,
		Size:       d.Size,
		MimeType:   d.MimeType,
		StorageKey: d.StorageKey,
		FolderID:   d.FolderID,
		CreatedAt:  d.CreatedAt,
	}
}
