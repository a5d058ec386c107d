package whisper

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// downloadAudio materializes an audio render of the video at the lowest
// acceptable quality (speech does not need high fidelity) into a
// deterministic temp path keyed by the video id. An existing file from a
// prior attempt is reused, which makes the step idempotent across retries:
// a transient upload failure never causes a re-download.
func (c *Client) downloadAudio(ctx context.Context, videoID string) (string, error) {
	audioPath := filepath.Join(c.tempDir, fmt.Sprintf("ytx-%s.mp3", videoID))

	if _, err := os.Stat(audioPath); err == nil {
		c.logger.Debug("audio file already exists, skipping download", "path", audioPath)
		return audioPath, nil
	}

	// Advisory lock on the deterministic path, in case two invocations for
	// the same video id race on the download.
	lock := flock.New(audioPath + ".lock")
	if err := lock.Lock(); err == nil {
		defer lock.Unlock()
		if _, err := os.Stat(audioPath); err == nil {
			return audioPath, nil
		}
	}

	watchURL := "https://www.youtube.com/watch?v=" + videoID
	outputTemplate := filepath.Join(c.tempDir, fmt.Sprintf("ytx-%s.%%(ext)s", videoID))
	c.logger.Debug("downloading audio", "url", watchURL)

	err := c.runner.Run(ctx, c.ytdlpPath,
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "9",
		"--no-playlist",
		"-o", outputTemplate,
		watchURL,
	)
	if err != nil {
		if isNotFound(err) {
			return "", ErrYtdlpNotInstalled
		}
		return "", &DownloadError{VideoID: videoID, Err: err}
	}

	if _, err := os.Stat(audioPath); err != nil {
		return "", &DownloadError{VideoID: videoID, Err: fmt.Errorf("yt-dlp did not produce expected output file %s", audioPath)}
	}

	return audioPath, nil
}

// videoTitle fetches the video title via the downloader. Best effort: any
// failure yields an empty title.
func (c *Client) videoTitle(ctx context.Context, videoID string) string {
	watchURL := "https://www.youtube.com/watch?v=" + videoID
	title, err := c.runner.Output(ctx, c.ytdlpPath, "--get-title", "--no-playlist", watchURL)
	if err != nil {
		c.logger.Debug("title lookup failed", "video_id", videoID, "error", err)
		return ""
	}
	return title
}
