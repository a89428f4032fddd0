package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cheatwell/cheatwell-api/internal/dto"
	"github.com/cheatwell/cheatwell-api/internal/handler"
	"github.com/cheatwell/cheatwell-api/internal/service"
)

type mockExecutionService struct {
	lastInput service.ExecutionInput
	response  dto.ExecuteResponse
	err       error
}

func (m *mockExecutionService) Execute(_ context.Context, input service.ExecutionInput) (dto.ExecuteResponse, error) {
	m.lastInput = input
	if m.err != nil {
		return dto.ExecuteResponse{}, m.err
	}
	return m.response, nil
}

func newExecuteApp(svc service.ExecutionService) *fiber.App {
	app := fiber.New()
	handler.NewExecuteHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1"))
	return app
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for name, data := range files {
		part, err := writer.CreateFormFile(name, name+".bin")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestExecuteHandler_Success(t *testing.T) {
	svc := &mockExecutionService{response: dto.ExecuteResponse{
		ConversationID: "conv-1",
		Result:         json.RawMessage(`{"title":"Entropy"}`),
		ExtractionTier: "parsed",
	}}
	app := newExecuteApp(svc)

	body, contentType := multipartBody(t, map[string]string{
		"prompt":       "Explain entropy",
		"use_research": "true",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/execute", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                `json:"success"`
		Data    dto.ExecuteResponse `json:"data"`
		Message string              `json:"message"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, "assignment processed", response.Message)
	require.Equal(t, "conv-1", response.Data.ConversationID)
	require.Equal(t, "Explain entropy", svc.lastInput.Request.Prompt)
	require.True(t, svc.lastInput.Request.UseResearch)
}

func TestExecuteHandler_ForwardsFileParts(t *testing.T) {
	svc := &mockExecutionService{response: dto.ExecuteResponse{ConversationID: "conv-2"}}
	app := newExecuteApp(svc)

	body, contentType := multipartBody(t, nil, map[string][]byte{
		"file": []byte("question text"),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/execute", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.NotNil(t, svc.lastInput.File)
	require.Equal(t, "file.bin", svc.lastInput.File.Filename)
	require.Equal(t, []byte("question text"), svc.lastInput.File.Data)
	require.Nil(t, svc.lastInput.Image)
	require.Nil(t, svc.lastInput.Voice)
}

func TestExecuteHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"no input", service.ErrNoInput, fiber.StatusBadRequest},
		{"oversize upload", service.ErrFileTooLarge, fiber.StatusRequestEntityTooLarge},
		{"unsupported file", service.ErrBadFileType, fiber.StatusUnsupportedMediaType},
		{"generator down", service.ErrGeneratorUnavailable, fiber.StatusServiceUnavailable},
		{"pipeline failure", errors.New("boom"), fiber.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newExecuteApp(&mockExecutionService{err: tc.err})

			body, contentType := multipartBody(t, map[string]string{"prompt": "hi"}, nil)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/execute", body)
			req.Header.Set("Content-Type", contentType)

			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)

			var response struct {
				Success bool `json:"success"`
			}
			decodeResponse(t, resp, &response)
			require.False(t, response.Success)
		})
	}
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
