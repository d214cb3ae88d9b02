package downloadmgr

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// chunkSize is the size of the buffer a response body is streamed with
const chunkSize = 32 * 1024

var defaultClient = http.Client{
	Transport: &http.Transport{
		Dial: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).Dial,
		TLSHandshakeTimeout:   20 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	},
}

var discardLogger = func() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

// ErrInvalidSha is returned when the downloaded file's sha1 sum does not match the expected one
type ErrInvalidSha struct {
	FileName    string
	ExpectedSha string
	ActualSha   string
}

func (e *ErrInvalidSha) Error() string {
	return fmt.Sprintf(
		"File corrupted: %s sha1 is invalid.\n\texpected to be \"%s\"\n\tbut actually is \"%s\"\n",
		e.FileName,
		e.ExpectedSha,
		e.ActualSha,
	)
}

// download streams the response into `<target>.part` and moves it into place
// once it is complete (and the sha1 matches). Returns the number of bytes written
func (d *DownloadManager) download(ctx context.Context, t *Task) (int64, error) {
	if err := d.Fs.MkdirAll(filepath.Dir(t.Target), os.ModePerm); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", t.URL, nil)
	if err != nil {
		return 0, err
	}

	client := d.Client
	if client == nil {
		client = &defaultClient
	}

	fileRes, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("error while fetching %s: %w", t.URL, err)
	}
	defer fileRes.Body.Close()

	if fileRes.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("invalid status code: %s from %s", fileRes.Status, t.URL)
	}

	part := t.Target + ".part"
	dest, err := d.Fs.OpenFile(part, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}

	hasher := sha1.New()
	written, err := copyChunked(io.MultiWriter(dest, hasher), fileRes.Body)
	if closeErr := dest.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		d.Fs.Remove(part)
		return 0, fmt.Errorf("error while downloading %s: %w", t.URL, err)
	}

	// check sha if there is one set
	if t.Sha1 != "" {
		actual := hex.EncodeToString(hasher.Sum(nil))
		if actual != t.Sha1 {
			d.Fs.Remove(part)
			return 0, &ErrInvalidSha{t.Target, t.Sha1, actual}
		}
	}

	if err := d.Fs.Rename(part, t.Target); err != nil {
		d.Fs.Remove(part)
		return 0, err
	}

	d.logger().WithFields(logrus.Fields{"target": t.Target, "bytes": written}).Debug("downloaded")
	return written, nil
}

func copyChunked(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, chunkSize)
	var written int64
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, err := dst.Write(buf[:n]); err != nil {
				return written, err
			}
			written += int64(n)
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}
