package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdgjkuat/techdigest/config"
	"github.com/gdgjkuat/techdigest/imagehost"
	"github.com/gdgjkuat/techdigest/internal/testdb"
)

const adminKey = "test-admin-key"

type stubHost struct {
	fail    bool
	deleted []string
}

func (s *stubHost) Upload(_ context.Context, data []byte, filename, folder, publicID string) imagehost.UploadResult {
	if s.fail {
		return imagehost.UploadResult{Failure: &imagehost.Failure{Op: "upload", Message: "quota exceeded"}}
	}
	if publicID == "" {
		publicID = "generated.jpg"
	}
	id := folder + "/" + publicID
	return imagehost.UploadResult{Asset: &imagehost.Asset{
		URL: "https://cdn.example/" + id, PublicID: id, Width: 640, Height: 480, Format: "jpg", Bytes: len(data),
	}}
}

func (s *stubHost) Delete(_ context.Context, publicID string) bool {
	s.deleted = append(s.deleted, publicID)
	return true
}

func (s *stubHost) URL(publicID string, t imagehost.Transform) string {
	return imagehost.CloudinaryURL("demo", publicID, t)
}

func newTestRouter(t *testing.T, host imagehost.Host) *gin.Engine {
	t.Helper()
	cfg := config.AppConfig{
		AdminAPIKey:    adminKey,
		GinMode:        "test",
		AllowedOrigins: []string{"*"},
		ImageFolder:    "gdg-jkuat-blog",
		MaxUploadMB:    1,
	}
	return SetupRouter(testdb.New(t), cfg, host)
}

func call(r http.Handler, method, path string, body interface{}, admin bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+adminKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func imageRequest(t *testing.T, path, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminKey)
	return req
}

func TestEpisodeLifecycle(t *testing.T) {
	r := newTestRouter(t, &stubHost{})

	w := call(r, http.MethodPost, "/episodes", map[string]interface{}{
		"episode_number": 1, "title": "Intro", "content": "hello",
	}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.EqualValues(t, 0, created["like_count"])
	assert.EqualValues(t, 1, created["episode_number"])

	for i := 1; i <= 3; i++ {
		w = call(r, http.MethodPost, "/episodes/1/like", nil, false)
		require.Equal(t, http.StatusOK, w.Code)
		like := decode(t, w)
		assert.EqualValues(t, i, like["new_like_count"])
		assert.Equal(t, "Episode liked successfully!", like["message"])
		assert.Equal(t, created["id"], like["episode_id"])
	}

	w = call(r, http.MethodPost, "/episodes/1/comments", map[string]string{"comment_text": "nice"}, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	comment := decode(t, w)
	assert.Equal(t, "nice", comment["comment_text"])
	assert.Regexp(t, regexp.MustCompile(`^(Anonymous|Secret|Hidden|Mystery|Unknown|Shadow|Silent|Invisible)\d{3}$`), comment["random_name"])

	w = call(r, http.MethodGet, "/episodes/1", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode(t, w)
	assert.EqualValues(t, 3, detail["like_count"])
	assert.Len(t, detail["comments"], 1)

	w = call(r, http.MethodGet, "/stats/episodes/1", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)
	assert.EqualValues(t, 1, stats["views"])
	assert.EqualValues(t, 3, stats["like_count"])
	assert.EqualValues(t, 1, stats["comment_count"])

	w = call(r, http.MethodGet, "/episodes", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.NotContains(t, list[0], "content")

	w = call(r, http.MethodDelete, "/episodes/1", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Episode 1 and all its comments deleted successfully", decode(t, w)["message"])

	w = call(r, http.MethodGet, "/episodes/1", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Episode 1 not found", decode(t, w)["detail"])
}

func TestEpisodeErrors(t *testing.T) {
	r := newTestRouter(t, &stubHost{})
	body := map[string]interface{}{"episode_number": 5, "title": "Five", "content": "x"}

	require.Equal(t, http.StatusCreated, call(r, http.MethodPost, "/episodes", body, true).Code)
	w := call(r, http.MethodPost, "/episodes", body, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Episode 5 already exists", decode(t, w)["detail"])

	assert.Equal(t, http.StatusNotFound, call(r, http.MethodPost, "/episodes/9/like", nil, false).Code)
	assert.Equal(t, http.StatusNotFound, call(r, http.MethodPost, "/episodes/9/comments", map[string]string{"comment_text": "x"}, false).Code)
	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodPost, "/episodes/5/comments", map[string]string{"comment_text": ""}, false).Code)
	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodGet, "/episodes?limit=0", nil, false).Code)
	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodGet, "/episodes/abc", nil, false).Code)

	w = call(r, http.MethodPut, "/episodes/5", map[string]string{"title": "Renamed"}, true)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode(t, w)
	assert.Equal(t, "Renamed", updated["title"])
	assert.Equal(t, "x", updated["content"])

	w = call(r, http.MethodPost, "/episodes/5/comments", map[string]string{"comment_text": "bye"}, false)
	require.Equal(t, http.StatusCreated, w.Code)
	commentID := int(decode(t, w)["id"].(float64))

	w = call(r, http.MethodDelete, fmt.Sprintf("/episodes/5/comments/%d", commentID), nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	msg := decode(t, w)
	assert.Equal(t, fmt.Sprintf("Comment %d deleted successfully", commentID), msg["message"])
	assert.NotNil(t, msg["episode_id"])

	assert.Equal(t, http.StatusNotFound, call(r, http.MethodDelete, fmt.Sprintf("/episodes/5/comments/%d", commentID), nil, true).Code)
}

func TestUpdateEpisodeImage(t *testing.T) {
	r := newTestRouter(t, &stubHost{})
	body := map[string]interface{}{"episode_number": 4, "title": "Four", "content": "x", "image_url": "https://img/a.png"}
	require.Equal(t, http.StatusCreated, call(r, http.MethodPost, "/episodes", body, true).Code)

	w := call(r, http.MethodPut, "/episodes/4", map[string]interface{}{"title": "Renamed"}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://img/a.png", decode(t, w)["image_url"])

	w = call(r, http.MethodPut, "/episodes/4", map[string]interface{}{"image_url": nil}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode(t, w)
	assert.Nil(t, updated["image_url"])
	assert.Equal(t, "Renamed", updated["title"])
}

func TestEpisodeViewsUseCanonicalPath(t *testing.T) {
	r := newTestRouter(t, &stubHost{})
	body := map[string]interface{}{"episode_number": 1, "title": "One", "content": "x"}
	require.Equal(t, http.StatusCreated, call(r, http.MethodPost, "/episodes", body, true).Code)

	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/episodes/01", nil, false).Code)
	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/episodes/1", nil, false).Code)

	w := call(r, http.MethodGet, "/stats/episodes/1", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["views"])

	w = call(r, http.MethodGet, "/stats", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode(t, w)["daily_view_count"])
}

func TestAdminEndpointsRequireAuth(t *testing.T) {
	r := newTestRouter(t, &stubHost{})
	id := "3f1f5b0e-8d7a-4a55-9a4e-1c2b3d4e5f60"

	cases := []struct {
		method, path string
		body         interface{}
	}{
		{http.MethodPost, "/episodes", map[string]interface{}{"episode_number": 1, "title": "t", "content": "c"}},
		{http.MethodPost, "/episodes", map[string]interface{}{"garbage": true}},
		{http.MethodPost, "/episodes/upload-image", nil},
		{http.MethodPut, "/episodes/1", map[string]string{"title": "t"}},
		{http.MethodDelete, "/episodes/1", nil},
		{http.MethodDelete, "/episodes/1/comments/1", nil},
		{http.MethodPost, "/posts/createpost/", map[string]string{"title": "t", "content": "c"}},
		{http.MethodGet, "/posts/all/", nil},
		{http.MethodPut, "/posts/post/" + id, nil},
		{http.MethodDelete, "/posts/post/" + id, nil},
		{http.MethodDelete, "/posts/post/" + id + "/comments/x", nil},
		{http.MethodDelete, "/posts/post/" + id + "/likes/x", nil},
		{http.MethodPost, "/posts/post/" + id + "/images", map[string]string{"image_url": "u"}},
		{http.MethodDelete, "/posts/post/" + id + "/images/x", nil},
		{http.MethodPost, "/posts/post/" + id + "/featured-image", nil},
	}
	for _, tc := range cases {
		w := call(r, tc.method, tc.path, tc.body, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"), "%s %s", tc.method, tc.path)
	}
}

func TestUploadImage(t *testing.T) {
	host := &stubHost{}
	r := newTestRouter(t, host)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, imageRequest(t, "/episodes/upload-image", "image", "cover.png", "image/png", []byte("png-bytes")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Image uploaded successfully", body["message"])
	assert.Equal(t, body["url"], body["image_url"])
	assert.Equal(t, "gdg-jkuat-blog/generated.jpg", body["public_id"])
	assert.EqualValues(t, 640, body["width"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, imageRequest(t, "/episodes/upload-image", "image", "notes.txt", "text/plain", []byte("hi")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, imageRequest(t, "/episodes/upload-image", "image", "big.png", "image/png", make([]byte, 2<<20)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	failing := newTestRouter(t, &stubHost{fail: true})
	w = httptest.NewRecorder()
	failing.ServeHTTP(w, imageRequest(t, "/episodes/upload-image", "file", "cover.png", "image/png", []byte("png")))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to upload image: quota exceeded", decode(t, w)["detail"])
}

func TestPostVisibility(t *testing.T) {
	host := &stubHost{}
	r := newTestRouter(t, host)

	w := call(r, http.MethodPost, "/posts/createpost/", map[string]interface{}{"title": "Draft", "content": "wip"}, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	draft := decode(t, w)
	draftID := draft["post_id"].(string)
	assert.Equal(t, "JKUAT TECH DIGEST ADMIN", draft["author_name"])
	assert.Nil(t, draft["published_at"])

	w = call(r, http.MethodGet, "/posts/post/"+draftID, nil, false)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Post is not published", decode(t, w)["detail"])

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/posts/post/"+draftID, nil, true).Code)
	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodGet, "/posts/post/nope", nil, false).Code)
	assert.Equal(t, http.StatusNotFound, call(r, http.MethodGet, "/posts/post/3f1f5b0e-8d7a-4a55-9a4e-1c2b3d4e5f60", nil, false).Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPost, "/posts/post/"+draftID+"/comments", map[string]string{"content": "hi"}, false).Code)

	w = call(r, http.MethodGet, "/posts/posts/", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = call(r, http.MethodPut, "/posts/post/"+draftID, map[string]bool{"is_published": true}, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decode(t, w)["published_at"])

	w = call(r, http.MethodPost, "/posts/post/"+draftID+"/comments", map[string]string{"content": "hi"}, false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["commenter_name"])

	require.Equal(t, http.StatusCreated, call(r, http.MethodPost, "/posts/post/"+draftID+"/like", nil, false).Code)

	w = call(r, http.MethodGet, "/posts/post/"+draftID, nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	post := decode(t, w)
	assert.EqualValues(t, 1, post["comment_count"])
	assert.EqualValues(t, 1, post["like_count"])

	w = httptest.NewRecorder()
	r.ServeHTTP(w, imageRequest(t, "/posts/post/"+draftID+"/images", "image", "team-photo.jpg", "image/jpeg", []byte("jpg")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	img := decode(t, w)
	assert.Equal(t, "Team Photo", img["alt_text"])

	w = call(r, http.MethodDelete, "/posts/post/"+draftID, nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, host.deleted, 1)
	assert.Equal(t, img["public_id"], host.deleted[0])

	assert.Equal(t, http.StatusNotFound, call(r, http.MethodGet, "/posts/post/"+draftID, nil, true).Code)
}

func TestWelcomeHealthStats(t *testing.T) {
	r := newTestRouter(t, nil)

	w := call(r, http.MethodGet, "/", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "active", decode(t, w)["status"])

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/health", nil, false).Code)

	w = call(r, http.MethodGet, "/stats", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["episode_count"])

	assert.Equal(t, http.StatusNotFound, call(r, http.MethodGet, "/missing", nil, false).Code)
}
