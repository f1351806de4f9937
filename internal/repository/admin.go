package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// AdminEnvKey - переменная, в которой хранится chat id администратора
const AdminEnvKey = "ADMIN_CHAT_ID"

// EnvAdminRepository сохраняет администратора в .env, не трогая остальные переменные
type EnvAdminRepository struct {
	path string
	mu   sync.Mutex
}

func NewEnvAdminRepository(path string) *EnvAdminRepository {
	return &EnvAdminRepository{path: path}
}

// SaveAdmin записывает ADMIN_CHAT_ID в .env
func (r *EnvAdminRepository) SaveAdmin(_ context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	env, err := godotenv.Read(r.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to read %s: %w", r.path, err)
		}
		env = map[string]string{}
	}
	env[AdminEnvKey] = strconv.FormatInt(chatID, 10)

	if err := godotenv.Write(env, r.path); err != nil {
		return fmt.Errorf("failed to write %s: %w", r.path, err)
	}
	return nil
}
