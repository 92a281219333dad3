// Package audio отвечает за фоновую музыку демо: декодирование
// ogg/wav, вывод через динамик и управление паузой.
package audio

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// State - состояние проигрывателя
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "stopped"
	}
}

// SoundData - декодированная дорожка, готовая к проигрыванию
type SoundData struct {
	streamer beep.StreamSeeker
	format   beep.Format
}

// Len возвращает длину дорожки в сэмплах
func (d *SoundData) Len() int { return d.streamer.Len() }

// Format возвращает параметры дорожки
func (d *SoundData) Format() beep.Format { return d.format }

type readSeekNopCloser struct {
	io.ReadSeeker
}

func (readSeekNopCloser) Close() error { return nil }

// Decode декодирует дорожку по содержимому файла. Формат выбирается
// по расширению имени: поддерживаются ogg (vorbis) и wav.
func Decode(name string, data []byte) (*SoundData, error) {
	rc := readSeekNopCloser{bytes.NewReader(data)}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)
	switch {
	case strings.HasSuffix(name, ".ogg"):
		streamer, format, err = vorbis.Decode(rc)
	case strings.HasSuffix(name, ".wav"):
		streamer, format, err = wav.Decode(rc)
	default:
		return nil, fmt.Errorf("audio: неизвестный формат дорожки %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("audio: ошибка декодирования %q: %w", name, err)
	}

	return &SoundData{streamer: streamer, format: format}, nil
}

// Player - проигрыватель одной фоновой дорожки. Дорожка зацикливается:
// по окончании проигрывание возобновляется с начала.
type Player struct {
	mu     sync.RWMutex
	logger *log.Logger

	sound *SoundData
	ctrl  *beep.Ctrl
	state State

	speakerReady bool
}

// NewPlayer создает проигрыватель без дорожки
func NewPlayer() *Player {
	return &Player{
		logger: log.New(os.Stdout, "[Audio] ", log.LstdFlags),
		state:  StateStopped,
	}
}

// Install ставит декодированную дорожку и сразу запускает проигрывание.
// Вызывается один раз, когда загрузчик ресурсов закончил работу.
func (p *Player) Install(sound *SoundData) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.sound != nil {
		return fmt.Errorf("audio: дорожка уже установлена")
	}

	if !p.speakerReady {
		sr := sound.format.SampleRate
		if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
			return fmt.Errorf("audio: ошибка инициализации динамика: %w", err)
		}
		p.speakerReady = true
	}

	p.sound = sound
	p.ctrl = &beep.Ctrl{Streamer: beep.Loop(-1, sound.streamer)}
	speaker.Play(p.ctrl)
	p.state = StatePlaying

	p.logger.Printf("Дорожка запущена: %d сэмплов, %d Гц",
		sound.Len(), sound.format.SampleRate)
	return nil
}

// State возвращает текущее состояние проигрывателя
func (p *Player) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Pause приостанавливает проигрывание. Без дорожки - ничего не делает.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl == nil || p.state != StatePlaying {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
	p.state = StatePaused
	p.logger.Println("Проигрывание приостановлено")
}

// Resume возобновляет проигрывание после паузы
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl == nil || p.state != StatePaused {
		return
	}
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
	p.state = StatePlaying
	p.logger.Println("Проигрывание возобновлено")
}

// Toggle переключает паузу
func (p *Player) Toggle() {
	switch p.State() {
	case StatePlaying:
		p.Pause()
	case StatePaused:
		p.Resume()
	}
}
