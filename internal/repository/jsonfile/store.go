package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"taskManager/internal/logger"
	"taskManager/internal/models"
	"taskManager/internal/repository"
)

// Store — файловый бекенд. Вся коллекция читается в память при
// открытии области и целиком перезаписывается при коммите.
// Мьютекс держится на весь цикл read-modify-write, поэтому
// одновременные области сериализуются и гонка last-commit-wins
// исключена.
type Store struct {
	tasksPath string
	usersPath string
	mtx       sync.Mutex
}

func New(tasksPath, usersPath string) *Store {
	return &Store{
		tasksPath: tasksPath,
		usersPath: usersPath,
	}
}

func (s *Store) HealthCheck(ctx context.Context) error {
	dir := filepath.Dir(s.tasksPath)
	if _, err := os.Stat(dir); err != nil {
		logger.Error("Repository: Каталог хранилища недоступен", err)
		return fmt.Errorf("проверка каталога %s: %w", dir, err)
	}
	return nil
}

// document — содержимое обоих файлов, загруженное в рамках одной области.
type document struct {
	tasks []*models.Task
	users []*models.User
}

type scope struct {
	store *Store
	doc   *document
	done  bool
}

var _ repository.UnitOfWork = (*Store)(nil)
var _ repository.Scope = (*scope)(nil)

// Begin захватывает хранилище и загружает коллекции с диска.
// Область обязана закончиться Commit либо Rollback, иначе
// хранилище останется заблокированным.
func (s *Store) Begin(ctx context.Context) (repository.Scope, error) {
	s.mtx.Lock()

	doc := &document{}
	if err := readCollection(s.tasksPath, &doc.tasks); err != nil {
		s.mtx.Unlock()
		return nil, fmt.Errorf("чтение %s: %w", s.tasksPath, err)
	}
	if err := readCollection(s.usersPath, &doc.users); err != nil {
		s.mtx.Unlock()
		return nil, fmt.Errorf("чтение %s: %w", s.usersPath, err)
	}

	return &scope{store: s, doc: doc}, nil
}

func (sc *scope) Tasks() repository.TaskRepository {
	return &taskRepo{doc: sc.doc}
}

func (sc *scope) Users() repository.UserRepository {
	return &userRepo{doc: sc.doc}
}

// Commit сериализует коллекции и подменяет файлы целиком. Оба файла
// сначала полностью готовятся во временных копиях и только потом
// переименовываются: ошибка сериализации или записи не оставляет
// наполовину закоммиченную пару. Сами rename не транзакционны —
// сбой процесса между двумя rename может сохранить только задачи.
func (sc *scope) Commit(ctx context.Context) error {
	if sc.done {
		return errors.New("область уже закрыта")
	}
	sc.done = true
	defer sc.store.mtx.Unlock()

	tasksTmp, err := stageCollection(sc.store.tasksPath, sc.doc.tasks)
	if err != nil {
		return fmt.Errorf("запись %s: %w", sc.store.tasksPath, err)
	}
	usersTmp, err := stageCollection(sc.store.usersPath, sc.doc.users)
	if err != nil {
		os.Remove(tasksTmp)
		return fmt.Errorf("запись %s: %w", sc.store.usersPath, err)
	}

	if err := os.Rename(tasksTmp, sc.store.tasksPath); err != nil {
		os.Remove(tasksTmp)
		os.Remove(usersTmp)
		return fmt.Errorf("подмена %s: %w", sc.store.tasksPath, err)
	}
	if err := os.Rename(usersTmp, sc.store.usersPath); err != nil {
		os.Remove(usersTmp)
		return fmt.Errorf("подмена %s: %w", sc.store.usersPath, err)
	}
	return nil
}

// Rollback отбрасывает незакоммиченные изменения. Файловый бекенд
// до коммита ничего не пишет, так что достаточно освободить хранилище.
func (sc *scope) Rollback(ctx context.Context) error {
	if sc.done {
		return nil
	}
	sc.done = true
	sc.store.mtx.Unlock()
	return nil
}

func readCollection(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// отсутствующий файл — пустая коллекция
			return nil
		}
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}

// stageCollection пишет коллекцию во временный файл рядом с целевым
// и возвращает его путь; подменой занимается вызывающий.
func stageCollection(path string, collection any) (string, error) {
	data, err := json.MarshalIndent(collection, "", "    ")
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
