package whisper

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/scottidler/ytx"
)

const (
	// chunkSeconds keeps each chunk around 20 minutes, comfortably under
	// the upload ceiling at the assumed bitrate.
	chunkSeconds = 1200

	// assumedBitrateBps estimates duration from file size. Variable-bitrate
	// sources can misestimate the chunk count; the final chunk simply comes
	// out shorter or empty.
	assumedBitrateBps = 64_000
)

// chunkCount estimates how many fixed-duration chunks cover the file.
func chunkCount(sizeBytes int64) int {
	estimatedSeconds := float64(sizeBytes) / (assumedBitrateBps / 8)
	return int(math.Ceil(estimatedSeconds / chunkSeconds))
}

// chunkOffsetSeconds is the start offset of the chunk at index i.
func chunkOffsetSeconds(index int) float64 {
	return float64(index) * chunkSeconds
}

// transcribeChunked splits the audio into sequential fixed-duration chunks
// and transcribes them one at a time, correcting each chunk's segment
// timestamps by its offset. Any chunk failure aborts the whole operation;
// no partial results are returned.
func (c *Client) transcribeChunked(ctx context.Context, apiKey, videoID, audioPath string, model Model, lang string, sizeBytes int64) ([]ytx.Segment, error) {
	numChunks := chunkCount(sizeBytes)
	c.logger.Debug("splitting audio into chunks", "chunks", numChunks, "chunk_seconds", chunkSeconds)

	var all []ytx.Segment
	for i := 0; i < numChunks; i++ {
		offset := chunkOffsetSeconds(i)
		chunkPath := filepath.Join(c.tempDir, fmt.Sprintf("ytx-%s-chunk-%d.mp3", videoID, i))

		// Stream-copy extraction, no re-encoding.
		err := c.runner.Run(ctx, c.ffmpegPath,
			"-y",
			"-i", audioPath,
			"-ss", strconv.FormatFloat(offset, 'f', -1, 64),
			"-t", strconv.Itoa(chunkSeconds),
			"-acodec", "copy",
			chunkPath,
		)
		if err != nil {
			if isNotFound(err) {
				err = ErrFfmpegNotInstalled
			}
			return nil, &ChunkError{Index: i, Offset: offset, Err: err}
		}

		segments, err := c.transcribeFile(ctx, apiKey, chunkPath, model, lang)
		if err != nil {
			return nil, err
		}

		for j := range segments {
			segments[j].Start += offset
		}
		all = append(all, segments...)

		// Best effort; a leftover chunk file is not an error.
		_ = os.Remove(chunkPath)
	}

	return all, nil
}
