package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreSaveAndRead(t *testing.T) {
	store := NewLocalStore(t.TempDir(), 1024)

	saved, err := store.Save(ClassAudio, "visit.wav", []byte("RIFFdata"))
	require.NoError(t, err)
	assert.Equal(t, "visit.wav", saved.Name)
	assert.Equal(t, "audio/wav", saved.MIMEType)
	assert.Equal(t, "audio", filepath.Base(filepath.Dir(saved.Path)))

	data, err := store.Read(saved.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFFdata"), data)
}

func TestLocalStoreValidate(t *testing.T) {
	store := NewLocalStore(t.TempDir(), 10)

	tests := []struct {
		name    string
		class   ArtifactClass
		file    string
		size    int64
		wantErr error
	}{
		{"image ok", ClassImage, "scan.png", 5, nil},
		{"dicom ok", ClassImage, "scan.DCM", 5, nil},
		{"over limit", ClassImage, "scan.png", 11, ErrTooLarge},
		{"empty", ClassAudio, "a.wav", 0, ErrEmpty},
		{"audio ext on image class", ClassImage, "a.wav", 5, ErrUnsupportedType},
		{"image ext on audio class", ClassAudio, "a.png", 5, ErrUnsupportedType},
		{"no extension", ClassImage, "scan", 5, ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Validate(tt.class, tt.file, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLocalStoreRejectsBeforeWrite(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, 4)

	_, err := store.Save(ClassImage, "big.png", []byte("too large payload"))
	require.Error(t, err)

	// Nothing may touch the disk on a rejected artifact.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalStoreRemove(t *testing.T) {
	store := NewLocalStore(t.TempDir(), 1024)

	saved, err := store.Save(ClassImage, "scan.jpg", []byte("jpg"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(saved.Path))
	_, err = store.Read(saved.Path)
	assert.Error(t, err)

	assert.NoError(t, store.Remove(""))
}
