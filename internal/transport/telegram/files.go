package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sandevgo/daobot/internal/core"
)

const downloadTimeout = 45 * time.Second

// downloadFile fetches a voice/audio attachment by file id. Returns the
// raw bytes and the server-side filename (or the fallback).
func (b *Bot) downloadFile(ctx context.Context, fileID, fallback string) ([]byte, string, error) {
	file, err := b.bot.FileByID(fileID)
	if err != nil {
		return nil, "", fmt.Errorf("resolve file: %w", err)
	}
	if file.FilePath == "" {
		return nil, "", fmt.Errorf("telegram did not return a file path")
	}

	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/file/bot%s/%s", b.bot.URL, b.cfg.Token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", core.BotUserAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &core.StatusError{Status: resp.StatusCode, Detail: "file download failed"}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("downloaded empty file")
	}

	filename := fallback
	if idx := strings.LastIndex(file.FilePath, "/"); idx >= 0 && idx < len(file.FilePath)-1 {
		filename = file.FilePath[idx+1:]
	}
	return data, filename, nil
}
