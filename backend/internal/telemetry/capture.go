package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Capture пишет телеметрию кадров в файл: zstd-сжатый поток строк JSON,
// по записи на кадр. Такой захват удобно прогонять скриптами при разборе
// проблем с производительностью.
type Capture struct {
	mu  sync.Mutex
	f   io.Closer
	enc *zstd.Encoder
	w   *bufio.Writer
}

// NewCapture открывает файл захвата на запись
func NewCapture(path string) (*Capture, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("telemetry: ошибка создания файла захвата: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("telemetry: ошибка инициализации zstd: %w", err)
	}
	return &Capture{
		f:   f,
		enc: enc,
		w:   bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

// Write дописывает одну запись
func (c *Capture) Write(sample FrameSample) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.w == nil {
		return fmt.Errorf("telemetry: захват уже закрыт")
	}
	line, err := json.Marshal(sample)
	if err != nil {
		return err
	}
	if _, err := c.w.Write(line); err != nil {
		return err
	}
	return c.w.WriteByte('\n')
}

// Close досылает буферы и закрывает файл
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.w == nil {
		return nil
	}
	if err := c.w.Flush(); err != nil {
		return err
	}
	if err := c.enc.Close(); err != nil {
		return err
	}
	c.w = nil
	return c.f.Close()
}

// ReadCapture читает файл захвата обратно в память
func ReadCapture(path string) ([]FrameSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("telemetry: ошибка открытия захвата: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("telemetry: ошибка инициализации zstd: %w", err)
	}
	defer dec.Close()

	var samples []FrameSample
	scanner := bufio.NewScanner(dec)
	for scanner.Scan() {
		var s FrameSample
		if err := json.Unmarshal(scanner.Bytes(), &s); err != nil {
			return nil, fmt.Errorf("telemetry: битая запись захвата: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, scanner.Err()
}
