package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/ktx"
	"github.com/woozymasta/ktx/internal/report"
)

func testContainer(t *testing.T) []byte {
	t.Helper()

	h := ktx.NewHeader()
	h.GLType = ktx.GLUnsignedByte
	h.GLTypeSize = 1
	h.GLFormat = ktx.GLRGBA
	h.GLInternalFormat = ktx.GLRGBA8
	h.GLBaseInternalFormat = ktx.GLRGBA
	h.PixelWidth = 2
	h.PixelHeight = 2
	h.NumberOfMipmapLevels = 2

	s, err := ktx.Serialize(h, ktx.KeyValues{{Key: "a", Value: []byte("b")}},
		[][]byte{bytes.Repeat([]byte{7}, 16), {1, 2, 3, 4}})
	require.NoError(t, err)
	return s.Bytes()
}

func newTestEcho(t *testing.T, cfg Config) (*echo.Echo, *Store) {
	t.Helper()
	srv := New(nil, nil, cfg)
	t.Cleanup(func() { _ = srv.Store().Close() })
	return srv.Echo(), srv.Store()
}

func do(t *testing.T, e *echo.Echo, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEOctetStream)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, e *echo.Echo, body []byte) CreatedBody {
	t.Helper()
	rec := do(t, e, http.MethodPost, "/v1/textures?name=tex.ktx", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created CreatedBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	return created
}

func TestTextureLifecycle(t *testing.T) {
	t.Parallel()

	e, store := newTestEcho(t, Config{})
	data := testContainer(t)

	created := upload(t, e, data)
	_, err := uuid.Parse(created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, created.Levels)
	assert.Equal(t, len(data), created.Size)
	assert.Equal(t, 1, store.Len())

	rec := do(t, e, http.MethodGet, "/v1/textures", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
	assert.Equal(t, "tex.ktx", list[0].Name)
	assert.Equal(t, uint32(2), list[0].Width)

	rec = do(t, e, http.MethodGet, "/v1/textures/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var r report.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	assert.Equal(t, "tex.ktx", r.Name)
	assert.Equal(t, "RGBA8", r.InternalFormat)
	require.Len(t, r.Levels, 2)
	assert.Equal(t, report.Fingerprint([]byte{1, 2, 3, 4}), r.Levels[1].Fingerprint)

	rec = do(t, e, http.MethodGet, "/v1/textures/"+created.ID+"/levels/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []byte{1, 2, 3, 4}, rec.Body.Bytes())

	rec = do(t, e, http.MethodGet, "/v1/textures/"+created.ID+"/data", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, data, rec.Body.Bytes())

	rec = do(t, e, http.MethodDelete, "/v1/textures/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, store.Len())

	rec = do(t, e, http.MethodGet, "/v1/textures/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, e, http.MethodDelete, "/v1/textures/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadCompressed(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t, Config{})
	data := testContainer(t)

	k, err := ktx.Parse(ktx.NewStorage(bytes.Clone(data)))
	require.NoError(t, err)
	defer func() { _ = k.Close() }()

	path := filepath.Join(t.TempDir(), "tex.ktx.zst")
	require.NoError(t, ktx.WriteContainer(k, path, &ktx.WriteOptions{Compression: ktx.CompressionZstd}))
	compressed, err := os.ReadFile(path)
	require.NoError(t, err)

	created := upload(t, e, compressed)
	assert.Equal(t, len(data), created.Size)
}

func TestUploadErrors(t *testing.T) {
	t.Parallel()

	e, store := newTestEcho(t, Config{MaxUploadBytes: 64})

	rec := do(t, e, http.MethodPost, "/v1/textures", []byte("definitely not a texture"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, ktx.ErrMagicMismatch.Error())

	rec = do(t, e, http.MethodPost, "/v1/textures", testContainer(t))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, 0, store.Len())
}

func TestUploadInflatesPastLimit(t *testing.T) {
	t.Parallel()

	h := ktx.NewHeader()
	h.GLType = ktx.GLUnsignedByte
	h.GLTypeSize = 1
	h.GLFormat = ktx.GLRGBA
	h.GLInternalFormat = ktx.GLRGBA8
	h.GLBaseInternalFormat = ktx.GLRGBA
	h.PixelWidth = 1024
	h.PixelHeight = 1024
	h.NumberOfMipmapLevels = 1

	for _, c := range []ktx.Compression{ktx.CompressionLZ4, ktx.CompressionZstd} {
		c := c
		t.Run(c.String(), func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "big.ktx"+c.Ext())
			require.NoError(t, ktx.WriteFile(path, h, nil, [][]byte{make([]byte, 4<<20)}, &ktx.WriteOptions{Compression: c}))
			body, err := os.ReadFile(path)
			require.NoError(t, err)
			require.Less(t, len(body), 1<<20)

			e, store := newTestEcho(t, Config{MaxUploadBytes: 1 << 20})
			rec := do(t, e, http.MethodPost, "/v1/textures", body)
			assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
			assert.Equal(t, 0, store.Len())
		})
	}
}

func TestLevelErrors(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(t, Config{})
	created := upload(t, e, testContainer(t))

	tests := []struct {
		path string
		code int
	}{
		{path: "/v1/textures/" + created.ID + "/levels/2", code: http.StatusNotFound},
		{path: "/v1/textures/" + created.ID + "/levels/-1", code: http.StatusBadRequest},
		{path: "/v1/textures/" + created.ID + "/levels/top", code: http.StatusBadRequest},
		{path: "/v1/textures/" + uuid.NewString() + "/levels/0", code: http.StatusNotFound},
	}
	for _, tc := range tests {
		rec := do(t, e, http.MethodGet, tc.path, nil)
		assert.Equal(t, tc.code, rec.Code, tc.path)
	}
}
