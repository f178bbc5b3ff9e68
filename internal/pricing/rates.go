package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

var ErrInvalidRates = errors.New("invalid rates")

type RatesSource interface {
	Current() Rates
}

// StaticRates is a RatesSource that never changes.
type StaticRates Rates

func (s StaticRates) Current() Rates {
	return Rates(s)
}

// LoadRates reads a YAML rates file. Keys missing from the file keep their
// default value.
func LoadRates(path string) (Rates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rates{}, fmt.Errorf("read rates file: %w", err)
	}
	rates := DefaultRates()
	if err := yaml.Unmarshal(data, &rates); err != nil {
		return Rates{}, fmt.Errorf("parse rates file: %w", err)
	}
	if err := rates.Validate(); err != nil {
		return Rates{}, err
	}
	return rates, nil
}

func (r Rates) Validate() error {
	if r.BaseRate <= 0 {
		return fmt.Errorf("%w: base_rate must be positive", ErrInvalidRates)
	}
	if r.IroningPerHour < 0 || r.Supplies < 0 || r.Windows < 0 || r.ShoppingOuting < 0 {
		return fmt.Errorf("%w: surcharges must not be negative", ErrInvalidRates)
	}
	if r.PromoPercent < 0 || r.PromoPercent > 1 {
		return fmt.Errorf("%w: promo_percent must be within [0,1]", ErrInvalidRates)
	}
	if r.TaxAdvance <= 0 || r.TaxAdvance > 1 {
		return fmt.Errorf("%w: tax_advance must be within (0,1]", ErrInvalidRates)
	}
	return nil
}

// FileRates serves the rates of a YAML file and reloads them when the file
// changes. A file that fails to load keeps the previous rates in place.
type FileRates struct {
	path    string
	log     *slog.Logger
	current atomic.Pointer[Rates]
}

func NewFileRates(path string, log *slog.Logger) (*FileRates, error) {
	rates, err := LoadRates(path)
	if err != nil {
		return nil, err
	}
	fr := &FileRates{path: path, log: log}
	fr.current.Store(&rates)
	return fr, nil
}

func (f *FileRates) Current() Rates {
	return *f.current.Load()
}

func (f *FileRates) reload() {
	rates, err := LoadRates(f.path)
	if err != nil {
		f.log.Warn("pricing rates: reload failed", slog.String("path", f.path), slog.String("error", err.Error()))
		return
	}
	f.current.Store(&rates)
	f.log.Info("pricing rates: reloaded", slog.String("path", f.path), slog.Float64("base_rate", rates.BaseRate))
}

// Watch blocks until ctx is done. The parent directory is watched because
// editors usually replace the file instead of writing it in place.
func (f *FileRates) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("watch %s: %w", f.path, err)
	}

	target := filepath.Clean(f.path)
	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				debounce = time.After(200 * time.Millisecond)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.log.Warn("pricing rates: watcher error", slog.String("error", err.Error()))
		case <-debounce:
			debounce = nil
			f.reload()
		}
	}
}
