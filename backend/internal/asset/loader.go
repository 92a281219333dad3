// Package asset загружает ресурсы демо: модели в формате OBJ/MTL,
// текстуры и звуковые дорожки.
package asset

import (
	"fmt"
	"os"
	"path/filepath"
)

// Loader читает ресурсы из каталога на диске
type Loader struct {
	root string
}

// NewLoader создает загрузчик с корневым каталогом ресурсов
func NewLoader(root string) *Loader {
	return &Loader{root: root}
}

// LoadBytes читает файл ресурса целиком
func (l *Loader) LoadBytes(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.root, name))
	if err != nil {
		return nil, fmt.Errorf("asset: ошибка чтения %q: %w", name, err)
	}
	return data, nil
}

// LoadString читает текстовый ресурс
func (l *Loader) LoadString(name string) (string, error) {
	data, err := l.LoadBytes(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
