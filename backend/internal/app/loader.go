package app

import (
	"fmt"

	"github.com/villuna/tumblin-down/backend/internal/asset"
	"github.com/villuna/tumblin-down/backend/internal/audio"
)

// Assets - все ресурсы, которые нужны демо для старта
type Assets struct {
	Model *asset.Model
	Sound *audio.SoundData
}

// loadResult - результат фоновой загрузки: либо ресурсы, либо ошибка
type loadResult struct {
	assets *Assets
	err    error
}

// startLoad запускает загрузку ресурсов в отдельной горутине.
// Результат приходит в канал ровно один раз; цикл кадров опрашивает
// канал неблокирующе, пока приложение в состоянии загрузки.
func startLoad(loader *asset.Loader, modelPath, musicPath string) <-chan loadResult {
	ch := make(chan loadResult, 1)
	go func() {
		assets, err := loadAssets(loader, modelPath, musicPath)
		ch <- loadResult{assets: assets, err: err}
	}()
	return ch
}

func loadAssets(loader *asset.Loader, modelPath, musicPath string) (*Assets, error) {
	model, err := loader.LoadModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("app: ошибка загрузки модели: %w", err)
	}

	musicBytes, err := loader.LoadBytes(musicPath)
	if err != nil {
		return nil, fmt.Errorf("app: ошибка загрузки дорожки: %w", err)
	}
	sound, err := audio.Decode(musicPath, musicBytes)
	if err != nil {
		return nil, err
	}

	return &Assets{Model: model, Sound: sound}, nil
}
