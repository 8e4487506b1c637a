package handler

import "net/http"

// Handlers groups everything mounted on the API mux
type Handlers struct {
	Folder  *FolderHandler
	File    *FileHandler
	Upload  *UploadHandler
	Tree    *TreeHandler
	Blob    *BlobHandler
	Health  *HealthHandler
	Metrics http.Handler
}

// RegisterRoutes mounts all routes (Go 1.22+ enhanced patterns)
func RegisterRoutes(mux *http.ServeMux, h Handlers) {
	// Health
	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /db-ping", h.Health.DBPing)
	if h.Metrics != nil {
		mux.Handle("GET /metrics", h.Metrics)
	}

	// Folder routes
	mux.HandleFunc("GET /api/folders", h.Folder.ListFolders)
	mux.HandleFunc("POST /api/folders", h.Folder.CreateFolder)
	mux.HandleFunc("GET /api/folders/{id}", h.Folder.GetFolder)
	mux.HandleFunc("PUT /api/folders/{id}", h.Folder.UpdateFolder)
	mux.HandleFunc("PATCH /api/folders/{id}", h.Folder.UpdateFolder)
	mux.HandleFunc("DELETE /api/folders/{id}", h.Folder.DeleteFolder)

	// Tree
	mux.HandleFunc("GET /api/tree", h.Tree.GetTree)

	// File routes
	mux.HandleFunc("GET /api/files/{folderId}", h.File.ListFiles)
	mux.HandleFunc("DELETE /api/files/{id}", h.File.DeleteFile)
	mux.HandleFunc("POST /api/upload/{folderId}", h.Upload.Upload)

	// Blob downloads
	mux.HandleFunc("GET /uploads/{key}", h.Blob.ServeBlob)
}
