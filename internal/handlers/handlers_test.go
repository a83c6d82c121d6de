package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nandeesh-nh/lan-chat/internal/handlers"
	"github.com/Nandeesh-nh/lan-chat/internal/models"
	"github.com/Nandeesh-nh/lan-chat/internal/routes"
	"github.com/Nandeesh-nh/lan-chat/internal/services"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	User    json.RawMessage `json:"user"`
}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	memFs := afero.NewMemMapFs()
	creds := services.NewFileCredentialStore(memFs, "users.json")
	files, err := services.NewFileStore(memFs, "uploads")
	require.NoError(t, err)

	h := handlers.New(creds, services.NewPresenceTracker(), services.NewMessageStore(), files)

	r := chi.NewRouter()
	routes.SetupRoutes(r, h)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func register(t *testing.T, r http.Handler, username, password string) {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/auth/register", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decodeEnvelope(t, rec).Success)
}

func login(t *testing.T, r http.Handler, username, password string) {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
		"username": username, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decodeEnvelope(t, rec).Success)
}

func messagesFor(t *testing.T, r http.Handler, user string) []models.Message {
	t.Helper()
	rec := doJSON(t, r, http.MethodGet, "/messages?user="+user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var msgs []models.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msgs))
	return msgs
}

func TestRegisterAndLogin(t *testing.T) {
	r := newTestRouter(t)

	register(t, r, "alice", "secret")

	// duplicate registration is a validation failure, still HTTP 200
	rec := doJSON(t, r, http.MethodPost, "/auth/register", map[string]string{
		"username": "alice", "password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "Username already exists", env.Message)

	// wrong password
	rec = doJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
		"username": "alice", "password": "nope123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)

	// correct login returns the user and creates a presence entry
	rec = doJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
		"username": "alice", "password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	env = decodeEnvelope(t, rec)
	require.True(t, env.Success)
	var user struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(env.User, &user))
	assert.Equal(t, "alice", user.Username)

	rec = doJSON(t, r, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var online []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &online))
	assert.Equal(t, []string{"alice"}, online)

	// the join was announced
	msgs := messagesFor(t, r, "alice")
	require.NotEmpty(t, msgs)
	assert.Equal(t, models.KindSystem, msgs[0].Kind)
	assert.Equal(t, "alice joined the chat", msgs[0].Body)
}

func TestRegisterMalformedJSON(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHeartbeat(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "alice", "secret")
	login(t, r, "alice", "secret")

	rec := doJSON(t, r, http.MethodPost, "/heartbeat", map[string]string{"username": "alice"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeEnvelope(t, rec).Success)

	// bob never logged in
	rec = doJSON(t, r, http.MethodPost, "/heartbeat", map[string]string{"username": "bob"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMessageVisibility(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/messages", map[string]string{
		"sender": "alice", "message": "hi",
	})
	require.True(t, decodeEnvelope(t, rec).Success)

	rec = doJSON(t, r, http.MethodPost, "/messages", map[string]string{
		"sender": "alice", "message": "secret", "target_user": "bob",
	})
	require.True(t, decodeEnvelope(t, rec).Success)

	bobBodies := []string{}
	for _, m := range messagesFor(t, r, "bob") {
		bobBodies = append(bobBodies, m.Body)
	}
	assert.Equal(t, []string{"hi", "secret"}, bobBodies)

	carolBodies := []string{}
	for _, m := range messagesFor(t, r, "carol") {
		carolBodies = append(carolBodies, m.Body)
	}
	assert.Equal(t, []string{"hi"}, carolBodies)
}

func TestGetMessagesRequiresUser(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/messages", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSendMessageValidation(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/messages", map[string]string{
		"sender": "alice", "message": "   ",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "Invalid message", env.Message)
}

func TestEditAndDelete(t *testing.T) {
	r := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/messages", map[string]string{
		"sender": "alice", "message": "hello",
	})
	id := messagesFor(t, r, "alice")[0].ID

	// someone else's edit attempt looks like a missing message
	rec := doJSON(t, r, http.MethodPut, "/messages/"+id, map[string]string{
		"message": "hacked", "user": "mallory",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "hello", messagesFor(t, r, "alice")[0].Body)

	rec = doJSON(t, r, http.MethodPut, "/messages/"+id, map[string]string{
		"message": "hello again", "user": "alice",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	edited := messagesFor(t, r, "alice")[0]
	assert.Equal(t, "hello again", edited.Body)
	assert.NotNil(t, edited.EditedAt)

	rec = doJSON(t, r, http.MethodDelete, "/messages/"+id, map[string]string{"user": "mallory"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, r, http.MethodDelete, "/messages/"+id, map[string]string{"user": "alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, messagesFor(t, r, "alice"))
}

func TestMarkDelivered(t *testing.T) {
	r := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/messages", map[string]string{
		"sender": "alice", "message": "hi all",
	})
	doJSON(t, r, http.MethodPost, "/messages", map[string]string{
		"sender": "alice", "message": "psst", "target_user": "bob",
	})

	rec := doJSON(t, r, http.MethodPost, "/messages/mark-delivered", map[string]string{"user": "bob"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success     bool `json:"success"`
		MarkedCount int  `json:"marked_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.MarkedCount)

	rec = doJSON(t, r, http.MethodPost, "/messages/mark-delivered", map[string]string{
		"user": "bob", "target_user": "alice",
	})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.MarkedCount)

	// nothing new on the second pass
	rec = doJSON(t, r, http.MethodPost, "/messages/mark-delivered", map[string]string{
		"user": "bob", "target_user": "alice",
	})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.MarkedCount)
}

func TestLogoutAnnouncesDeparture(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "alice", "secret")
	login(t, r, "alice", "secret")

	rec := doJSON(t, r, http.MethodPost, "/logout", map[string]string{"username": "alice"})
	require.Equal(t, http.StatusOK, rec.Code)

	var online []string
	rec = doJSON(t, r, http.MethodGet, "/users", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &online))
	assert.Empty(t, online)

	msgs := messagesFor(t, r, "bob")
	require.Len(t, msgs, 2)
	assert.Equal(t, "alice left the chat", msgs[1].Body)

	// logging out twice does not announce twice
	doJSON(t, r, http.MethodPost, "/logout", map[string]string{"username": "alice"})
	assert.Len(t, messagesFor(t, r, "bob"), 2)
}

func uploadFile(t *testing.T, r http.Handler, sender, target, filename, content string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("sender", sender))
	if target != "" {
		require.NoError(t, mw.WriteField("target_user", target))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestUploadAndDownload(t *testing.T) {
	r := newTestRouter(t)

	rec := uploadFile(t, r, "alice", "bob", "notes.txt", "hello file")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Success  bool   `json:"success"`
		Filename string `json:"filename"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Filename)

	// the upload produced a file message visible to the recipient
	msgs := messagesFor(t, r, "bob")
	require.Len(t, msgs, 1)
	assert.Equal(t, models.KindFile, msgs[0].Kind)
	assert.Equal(t, "Sent file: notes.txt", msgs[0].Body)
	assert.Equal(t, resp.Filename, msgs[0].StorageRef)
	assert.Equal(t, int64(len("hello file")), msgs[0].SizeBytes)

	// but not to a third user
	assert.Empty(t, messagesFor(t, r, "carol"))

	req := httptest.NewRequest(http.MethodGet, "/download/"+resp.Filename, nil)
	dl := httptest.NewRecorder()
	r.ServeHTTP(dl, req)
	require.Equal(t, http.StatusOK, dl.Code)
	assert.Equal(t, "application/octet-stream", dl.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="notes.txt"`, dl.Header().Get("Content-Disposition"))
	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "hello file", string(body))
}

func TestBroadcastUploadVisibleToEveryone(t *testing.T) {
	r := newTestRouter(t)

	rec := uploadFile(t, r, "alice", "", "agenda.txt", "topics")
	require.Equal(t, http.StatusOK, rec.Code)

	// no target: every user sees the file
	msgs := messagesFor(t, r, "carol")
	require.Len(t, msgs, 1)
	assert.Equal(t, models.KindFile, msgs[0].Kind)
	assert.Equal(t, "Sent file: agenda.txt", msgs[0].Body)
}

func TestLoginIgnoresUsernameCase(t *testing.T) {
	r := newTestRouter(t)

	register(t, r, "Alice", "secret")

	rec := doJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
		"username": "ALICE", "password": "secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.True(t, env.Success)
	var user struct {
		Username string `json:"username"`
	}
	require.NoError(t, json.Unmarshal(env.User, &user))
	assert.Equal(t, "alice", user.Username)

	// presence and the join announcement carry the stored form
	rec = doJSON(t, r, http.MethodGet, "/users", nil)
	var online []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &online))
	assert.Equal(t, []string{"alice"}, online)
}

func TestUploadValidation(t *testing.T) {
	r := newTestRouter(t)

	rec := uploadFile(t, r, "", "", "notes.txt", "x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = uploadFile(t, r, "alice", "", "malware.exe", "x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "File type not allowed", env.Message)
}

func TestDownloadUnknownRef(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/download/%s", "1700000000_deadbeef_gone.txt"), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
