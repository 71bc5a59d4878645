package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rowsJSON = `[{"auth_id":"user_1","name":"Al Jones","email":"al@example.com","role":"admin"}]`

func TestLoadEmployees_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "employees.json")
	require.NoError(t, os.WriteFile(path, []byte(rowsJSON), 0o600))

	rows, err := loadEmployees(context.Background(), path)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "user_1", rows[0].AuthID)
}

func TestLoadEmployees_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/employees.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(rowsJSON))
	}))
	defer srv.Close()

	rows, err := loadEmployees(context.Background(), srv.URL+"/employees.json")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = loadEmployees(context.Background(), srv.URL+"/missing.json")
	assert.EqualError(t, err, "API returned status code: 404")
}

func TestLoadEmployees_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "employees.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"an array"}`), 0o600))

	_, err := loadEmployees(context.Background(), path)

	assert.ErrorContains(t, err, "failed to parse JSON")
}
