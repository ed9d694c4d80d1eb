package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/eventro/eventro/go/dynamo"
)

const defaultLayoutBucket = "eventro-seat-layouts"

func layoutBucket() string {
	if b := os.Getenv("LAYOUT_BUCKET"); b != "" {
		return b
	}
	return defaultLayoutBucket
}

var s3Presigner = sync.OnceValues(func() (*s3.PresignClient, error) {
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return nil, err
	}
	return s3.NewPresignClient(s3.NewFromConfig(cfg)), nil
})

var layoutContentTypes = map[string]string{
	"image/png":        "png",
	"image/jpeg":       "jpg",
	"image/svg+xml":    "svg",
	"application/json": "json",
}

// handleLayoutUploadURL returns a presigned PUT URL for a venue's seat-layout
// asset. Only the venue's host may upload one.
func (a *app) handleLayoutUploadURL(w http.ResponseWriter, r *http.Request) {
	caller, err := a.requireRole(r, dynamo.RoleHost)
	if err != nil {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	venue, err := a.venues.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if venue.HostID != caller.UserID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	if !venue.SeatLayoutRequired {
		writeError(w, http.StatusBadRequest, "venue does not take a seat layout")
		return
	}

	var req struct {
		ContentType string `json:"content_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	ext, ok := layoutContentTypes[req.ContentType]
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported content type")
		return
	}

	presigner, err := s3Presigner()
	if err != nil {
		log.Printf("s3 presigner error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	key := "layouts/" + venue.VenueID + "." + ext
	presigned, err := presigner.PresignPutObject(r.Context(), &s3.PutObjectInput{
		Bucket:      aws.String(layoutBucket()),
		Key:         aws.String(key),
		ContentType: aws.String(req.ContentType),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		log.Printf("presign error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"upload_url": presigned.URL,
		"key":        key,
	})
}
