// Package fetch resolves product locations to local files, downloading
// ftp:// and http(s):// sources first.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jlaffaye/ftp"
	"github.com/rs/zerolog/log"

	"github.com/lox/hyplot/internal/httputil"
	"github.com/lox/hyplot/internal/metrics"
)

const (
	ftpTimeout  = 30 * time.Second
	defaultPort = "21"
)

// ErrScheme is returned for URLs that are neither local, ftp nor http.
var ErrScheme = errors.New("unsupported source scheme")

// Fetcher downloads remote products into Dir.
type Fetcher struct {
	// Dir receives downloads; empty means the system temp dir.
	Dir    string
	Client *http.Client

	// MaxElapsedTime bounds retries of one download.
	MaxElapsedTime  time.Duration
	InitialInterval time.Duration
}

func New(dir string) *Fetcher {
	return &Fetcher{
		Dir:             dir,
		Client:          httputil.NewClient(),
		MaxElapsedTime:  2 * time.Minute,
		InitialInterval: 500 * time.Millisecond,
	}
}

// Local is a resolved product. Remove deletes it if it was downloaded.
type Local struct {
	Path       string
	Downloaded bool
}

func (l Local) Remove() error {
	if !l.Downloaded {
		return nil
	}
	return os.Remove(l.Path)
}

// Resolve returns a local path for src. Plain paths and file:// URLs are
// checked and passed through; remote sources are downloaded with retries.
func (f *Fetcher) Resolve(ctx context.Context, src string) (Local, error) {
	u, err := url.Parse(src)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Windows drive letters parse as one letter schemes.
		return local(src)
	}

	switch u.Scheme {
	case "file":
		return local(u.Path)
	case "ftp":
		return f.download(ctx, u, f.retrFTP)
	case "http", "https":
		return f.download(ctx, u, f.getHTTP)
	}
	return Local{}, fmt.Errorf("%w %q", ErrScheme, u.Scheme)
}

func local(p string) (Local, error) {
	if _, err := os.Stat(p); err != nil {
		return Local{}, fmt.Errorf("open product: %w", err)
	}
	return Local{Path: p}, nil
}

type retrieveFunc func(ctx context.Context, u *url.URL, w io.Writer) error

func (f *Fetcher) download(ctx context.Context, u *url.URL, retrieve retrieveFunc) (Local, error) {
	start := time.Now()
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return Local{}, fmt.Errorf("no file name in %s", u.Redacted())
	}

	tmp, err := os.CreateTemp(f.Dir, "*-"+name)
	if err != nil {
		return Local{}, fmt.Errorf("create download file: %w", err)
	}
	fail := func(err error) (Local, error) {
		tmp.Close()
		os.Remove(tmp.Name())
		metrics.FetchesTotal.WithLabelValues(u.Scheme, "error").Inc()
		return Local{}, err
	}

	attempt := 0
	operation := func() error {
		attempt++
		if err := rewind(tmp); err != nil {
			return backoff.Permanent(err)
		}
		err := retrieve(ctx, u, tmp)
		if err != nil {
			log.Warn().Err(err).Str("url", u.Redacted()).Int("attempt", attempt).Msg("fetch: download failed")
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = f.InitialInterval
	bo.MaxElapsedTime = f.MaxElapsedTime
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return fail(fmt.Errorf("download %s: %w", u.Redacted(), err))
	}
	if err := tmp.Close(); err != nil {
		return fail(fmt.Errorf("close download: %w", err))
	}

	metrics.FetchesTotal.WithLabelValues(u.Scheme, "ok").Inc()
	metrics.FetchLatency.WithLabelValues(u.Scheme).Observe(time.Since(start).Seconds())
	log.Info().Str("url", u.Redacted()).Str("path", tmp.Name()).Int("attempts", attempt).Msg("fetch: downloaded product")

	return Local{Path: tmp.Name(), Downloaded: true}, nil
}

func rewind(f *os.File) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind download: %w", err)
	}
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("truncate download: %w", err)
	}
	return nil
}

func (f *Fetcher) retrFTP(ctx context.Context, u *url.URL, w io.Writer) error {
	conn, err := ftp.Dial(ftpAddr(u), ftp.DialWithTimeout(ftpTimeout), ftp.DialWithContext(ctx))
	if err != nil {
		return fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	user, pass := ftpCredentials(u)
	if err := conn.Login(user, pass); err != nil {
		return backoff.Permanent(fmt.Errorf("ftp login: %w", err))
	}

	resp, err := conn.Retr(u.Path)
	if err != nil {
		return fmt.Errorf("ftp retr: %w", err)
	}
	defer resp.Close()

	if _, err := io.Copy(w, resp); err != nil {
		return fmt.Errorf("ftp read: %w", err)
	}
	return nil
}

func ftpAddr(u *url.URL) string {
	port := u.Port()
	if port == "" {
		port = defaultPort
	}
	return net.JoinHostPort(u.Hostname(), port)
}

func ftpCredentials(u *url.URL) (user, pass string) {
	if u.User == nil {
		return "anonymous", "anonymous"
	}
	pass, _ = u.User.Password()
	return u.User.Username(), pass
}

func (f *Fetcher) getHTTP(ctx context.Context, u *url.URL, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return fmt.Errorf("http get: status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return backoff.Permanent(fmt.Errorf("http get: status %d", resp.StatusCode))
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("http read: %w", err)
	}
	return nil
}
