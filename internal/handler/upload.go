package handler

import (
	"io"
	"net/http"

	"roomshare/backend/internal/apperrors"
	"roomshare/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes caps a single uploaded image.
const maxUploadBytes = 5 << 20 // 5MB

// formImage pulls an optional image file out of a multipart form. A missing
// file is not an error; it returns (nil, nil).
func formImage(c *gin.Context, field string) (*storage.Upload, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrValidation, err.Error())
	}
	if fileHeader.Size > maxUploadBytes {
		return nil, apperrors.Wrap(apperrors.ErrValidation, "image exceeds the 5MB limit")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, err.Error())
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrValidation, err.Error())
	}

	return &storage.Upload{Filename: fileHeader.Filename, Data: data}, nil
}
