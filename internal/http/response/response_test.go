package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func recordResponse(t *testing.T, write func(c *gin.Context)) (int, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	write(c)

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	return w.Code, resp
}

func TestErrorHelpersCarryBusinessCode(t *testing.T) {
	cases := []struct {
		name     string
		write    func(c *gin.Context)
		wantCode int
	}{
		{"bad_request", func(c *gin.Context) { BadRequest(c, "参数有误") }, CodeBadRequest},
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "请先登录") }, CodeUnauthorized},
		{"forbidden", func(c *gin.Context) { Forbidden(c, "没有权限") }, CodeForbidden},
		{"not_found", func(c *gin.Context) { NotFound(c, "不存在") }, CodeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			httpCode, resp := recordResponse(t, tc.write)
			if httpCode != http.StatusOK {
				t.Fatalf("http status want 200 got %d", httpCode)
			}
			if resp.StatusCode != tc.wantCode {
				t.Fatalf("status_code want %d got %d", tc.wantCode, resp.StatusCode)
			}
		})
	}
}

func TestSuccessEnvelope(t *testing.T) {
	httpCode, resp := recordResponse(t, func(c *gin.Context) {
		Success(c, gin.H{"ok": true})
	})
	if httpCode != http.StatusOK {
		t.Fatalf("http status want 200 got %d", httpCode)
	}
	if resp.StatusCode != CodeOK {
		t.Fatalf("status_code want %d got %d", CodeOK, resp.StatusCode)
	}
	if resp.Msg != "success" {
		t.Fatalf("msg want success got %s", resp.Msg)
	}
}
