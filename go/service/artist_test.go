package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestArtistGetBatch_PreservesOrder(t *testing.T) {
	store, svc := testServices(t)
	seedArtist(t, store, "a1", "Artist One")
	seedArtist(t, store, "a2", "Artist Two")
	seedArtist(t, store, "a3", "Artist Three")

	artists, err := svc.artists.GetBatch(context.Background(), []string{"a3", "a1", "a2"})
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if len(artists) != 3 {
		t.Fatalf("got %d artists, want 3", len(artists))
	}
	if artists[0].ArtistID != "a3" || artists[1].ArtistID != "a1" || artists[2].ArtistID != "a2" {
		t.Errorf("order = %s, %s, %s; want a3, a1, a2",
			artists[0].ArtistID, artists[1].ArtistID, artists[2].ArtistID)
	}
}

func TestArtistGetBatch_NamesAllMissing(t *testing.T) {
	store, svc := testServices(t)
	seedArtist(t, store, "a1", "Artist One")

	_, err := svc.artists.GetBatch(context.Background(), []string{"a1", "ghost1", "ghost2"})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if !strings.Contains(nf.ID, "ghost1") || !strings.Contains(nf.ID, "ghost2") {
		t.Errorf("error names %q, want both missing ids", nf.ID)
	}
	if strings.Contains(nf.ID, "a1") {
		t.Errorf("error names %q, must not include found id", nf.ID)
	}
}

func TestArtistAddAndGet(t *testing.T) {
	_, svc := testServices(t)
	ctx := context.Background()

	artist, err := svc.artists.Add(ctx, "Artist One", "a bio")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if artist.ArtistID == "" {
		t.Fatal("artist has no id")
	}

	got, err := svc.artists.GetByID(ctx, artist.ArtistID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != "Artist One" || got.Bio != "a bio" {
		t.Errorf("artist = %+v", got)
	}

	var nf *NotFoundError
	if _, err := svc.artists.GetByID(ctx, "missing"); !errors.As(err, &nf) {
		t.Errorf("missing artist error = %v, want NotFoundError", err)
	}
}
