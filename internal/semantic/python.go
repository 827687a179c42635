package semantic

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/wgomg/aura/internal/config"
	"github.com/wgomg/aura/internal/utils"
)

// ErrPoolClosed is returned by Encode once Close has been called.
var ErrPoolClosed = errors.New("python encoder pool is closed")

// maxLineSize bounds one JSON response line; a batch of 32 vectors of 768
// floats is well under 1MB.
const maxLineSize = 16 << 20

type Task struct {
	RequestID string
	Texts     []string
	Result    chan<- TaskResult
}

type TaskResult struct {
	Embeddings []Embedding
	Err        error
}

// PythonWorkerPool runs sentence-transformers in long-lived Python
// processes and feeds them batches over stdin/stdout as JSON lines.
type PythonWorkerPool struct {
	logger    *utils.Logger
	script    string
	venv      string
	cfg       *config.SemanticConfig
	taskQueue chan Task
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

type PythonWorker struct {
	id      int
	process *exec.Cmd
	stdin   io.WriteCloser
	stdout  *bufio.Scanner
	mu      sync.Mutex
	pool    *PythonWorkerPool
}

type PythonRequest struct {
	Texts []string `json:"texts"`
}

type PythonResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
	ElapsedMS  int         `json:"elapsed_ms"`
}

func NewPythonEncoder(logger *utils.Logger, cfg *config.SemanticConfig) *PythonWorkerPool {
	pythonDir := filepath.Join(cfg.Python.ConfigDir, "python")
	script := filepath.Join(pythonDir, scriptName)
	venv := filepath.Join(cfg.Python.ConfigDir, "venv")

	return &PythonWorkerPool{
		logger:    logger,
		script:    script,
		venv:      venv,
		cfg:       cfg,
		taskQueue: make(chan Task, 100),
		done:      make(chan struct{}),
	}
}

// Initialize prepares the virtualenv and starts the workers. It blocks until
// every worker has loaded the model and reported ready.
func (p *PythonWorkerPool) Initialize(ctx context.Context) error {
	p.logger.Info(nil, "Initializing Python encoder with %d workers", p.cfg.WorkerCount)

	if err := p.setupEnvironment(ctx); err != nil {
		return fmt.Errorf("failed to setup environment: %w", err)
	}

	started := make(chan error, p.cfg.WorkerCount)
	for i := 0; i < p.cfg.WorkerCount; i++ {
		p.wg.Add(1)
		go p.runWorker(i, started)
	}

	var failed int
	for i := 0; i < p.cfg.WorkerCount; i++ {
		if err := <-started; err != nil {
			failed++
			p.logger.Error(nil, "Python worker failed to start: %v", err)
		}
	}
	if failed == p.cfg.WorkerCount {
		p.Close()
		return errors.New("no python worker could be started")
	}

	p.logger.Info(nil, "Python encoder initialized with %d/%d workers", p.cfg.WorkerCount-failed, p.cfg.WorkerCount)
	return nil
}

func (p *PythonWorkerPool) Encode(ctx context.Context, texts []string) ([]Embedding, error) {
	if len(texts) == 0 {
		return []Embedding{}, nil
	}

	reqID := ""
	if id := utils.RequestID(ctx); id != nil {
		reqID = *id
	}

	result := make(chan TaskResult, 1)
	task := Task{RequestID: reqID, Texts: texts, Result: result}

	select {
	case p.taskQueue <- task:
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-result:
		return res.Embeddings, res.Err
	case <-p.done:
		return nil, ErrPoolClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *PythonWorkerPool) runWorker(id int, started chan<- error) {
	defer p.wg.Done()

	worker, err := p.startWorker(id)
	started <- err
	if err != nil {
		return
	}

	for {
		select {
		case <-p.done:
			worker.close()
			return
		case task := <-p.taskQueue:
			if err := worker.processTask(task); err != nil {
				task.Result <- TaskResult{Err: err}

				// the process state is unknown after a protocol error
				worker.close()
				p.logger.Error(&task.RequestID, "Python worker %d failed, restarting: %v", id, err)
				if worker, err = p.startWorker(id); err != nil {
					p.logger.Error(nil, "Failed to restart worker %d: %v", id, err)
					return
				}
			}
		}
	}
}

func (p *PythonWorkerPool) startWorker(id int) (*PythonWorker, error) {
	python := filepath.Join(p.venv, "bin", "python")

	cmd := exec.Command(python, p.script)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		return nil, fmt.Errorf("start process: %w", err)
	}

	worker := &PythonWorker{
		id:      id,
		process: cmd,
		stdin:   stdin,
		stdout:  bufio.NewScanner(stdout),
		pool:    p,
	}
	worker.stdout.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	config := map[string]any{
		"model_name":           p.cfg.Model,
		"batch_size":           p.cfg.BatchSize,
		"normalize_embeddings": true,
	}

	configJSON, err := json.Marshal(config)
	if err != nil {
		worker.close()
		return nil, fmt.Errorf("marshal config: %w", err)
	}

	configJSON = append(configJSON, '\n')
	if _, err := stdin.Write(configJSON); err != nil {
		worker.close()
		return nil, fmt.Errorf("send config: %w", err)
	}

	ready := make(chan error, 1)
	var readyMsg struct {
		Status       string `json:"status"`
		EmbeddingDim int    `json:"embedding_dim"`
		Error        string `json:"error"`
	}
	go func() {
		if !worker.stdout.Scan() {
			ready <- fmt.Errorf("failed to read READY message: %v", worker.stdout.Err())
			return
		}
		ready <- json.Unmarshal(worker.stdout.Bytes(), &readyMsg)
	}()

	timeout := time.Duration(p.cfg.Python.ProcessReadyTimeout) * time.Second
	select {
	case err := <-ready:
		if err != nil {
			worker.close()
			return nil, fmt.Errorf("failed to parse ready message: %w", err)
		}
	case <-time.After(timeout):
		worker.close()
		return nil, fmt.Errorf("worker not ready after %s", timeout)
	}

	if readyMsg.Status != "ready" {
		worker.close()
		return nil, fmt.Errorf("unexpected startup status %q: %s", readyMsg.Status, readyMsg.Error)
	}

	p.logger.Debug(nil, "Python worker %d ready (embedding_dim=%d)", id, readyMsg.EmbeddingDim)
	return worker, nil
}

func (w *PythonWorker) processTask(task Task) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	reqJSON, err := json.Marshal(PythonRequest{Texts: task.Texts})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	reqJSON = append(reqJSON, '\n')
	if _, err := w.stdin.Write(reqJSON); err != nil {
		return fmt.Errorf("write request: %w", err)
	}

	if !w.stdout.Scan() {
		if err := w.stdout.Err(); err != nil {
			return fmt.Errorf("read stdout: %w", err)
		}
		return fmt.Errorf("stdout closed")
	}

	var resp PythonResponse
	if err := json.Unmarshal(w.stdout.Bytes(), &resp); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if resp.Error != "" {
		// the worker itself is still healthy
		task.Result <- TaskResult{Err: fmt.Errorf("python error: %s", resp.Error)}
		return nil
	}
	if len(resp.Embeddings) != len(task.Texts) {
		return fmt.Errorf("got %d embeddings for %d texts", len(resp.Embeddings), len(task.Texts))
	}

	w.pool.logger.Debug(
		&task.RequestID,
		"Python worker %d encoded %d texts in %dms",
		w.id, len(task.Texts), resp.ElapsedMS,
	)

	out := make([]Embedding, len(resp.Embeddings))
	for i, vec := range resp.Embeddings {
		out[i] = Embedding(vec)
	}
	task.Result <- TaskResult{Embeddings: out}
	return nil
}

func (w *PythonWorker) close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stdin != nil {
		w.stdin.Close()
	}
	if w.process == nil || w.process.Process == nil {
		return
	}

	exited := make(chan struct{})
	go func() {
		_ = w.process.Wait()
		close(exited)
	}()

	cfg := w.pool.cfg.Python
	select {
	case <-exited:
		return
	case <-time.After(time.Duration(cfg.ProcessShutdownTimeout) * time.Second):
	}

	w.pool.logger.Debug(nil, "Python worker %d did not exit, killing", w.id)
	_ = w.process.Process.Kill()
	select {
	case <-exited:
	case <-time.After(time.Duration(cfg.ProcessKillTimeout) * time.Second):
		w.pool.logger.Error(nil, "Python worker %d still running after kill", w.id)
	}
}

func (p *PythonWorkerPool) Close() error {
	p.closeOnce.Do(func() {
		close(p.done)
	})
	p.wg.Wait()
	return nil
}

func (p *PythonWorkerPool) setupEnvironment(ctx context.Context) error {
	pythonDir := filepath.Dir(p.script)

	updated, err := installScripts(pythonDir)
	if err != nil {
		return fmt.Errorf("failed to extract script: %w", err)
	}

	if err := p.checkPython(ctx); err != nil {
		return fmt.Errorf("python check failed: %w", err)
	}

	created, err := p.createVenv(ctx)
	if err != nil {
		return fmt.Errorf("failed to create venv: %w", err)
	}

	if created || updated {
		if err := p.installRequirements(ctx, filepath.Join(pythonDir, requirementsName)); err != nil {
			return fmt.Errorf("failed to install requirements: %w", err)
		}
	}

	return nil
}

func (p *PythonWorkerPool) checkPython(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "python3", "--version")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("python3 not found: %w", err)
	}

	p.logger.Debug(nil, "Python3 found")
	return nil
}

func (p *PythonWorkerPool) createVenv(ctx context.Context) (bool, error) {
	venvPython := filepath.Join(p.venv, "bin", "python")

	if _, err := os.Stat(venvPython); err == nil {
		p.logger.Debug(nil, "Virtual environment already exists at %s", p.venv)
		return false, nil
	}

	p.logger.Info(nil, "Creating virtual environment at %s", p.venv)

	cmd := exec.CommandContext(ctx, "python3", "-m", "venv", p.venv)
	if output, err := cmd.CombinedOutput(); err != nil {
		return false, fmt.Errorf("failed to create venv: %s: %w", output, err)
	}

	p.logger.Info(nil, "Virtual environment created successfully")
	return true, nil
}

func (p *PythonWorkerPool) installRequirements(ctx context.Context, requirementsPath string) error {
	venvPip := filepath.Join(p.venv, "bin", "pip")

	p.logger.Info(nil, "Installing Python requirements from %s", requirementsPath)

	cmd := exec.CommandContext(ctx, venvPip, "install", "--quiet", "-r", requirementsPath)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("pip install: %s: %w", output, err)
	}

	p.logger.Info(nil, "Python requirements installed successfully")
	return nil
}

// HealthCheck round-trips a mixed English and Tamil phrase through a worker.
func (p *PythonWorkerPool) HealthCheck(ctx context.Context) error {
	vecs, err := p.Encode(ctx, []string{"health check சோதனை"})
	if err != nil {
		return fmt.Errorf("health check: worker error: %w", err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return errors.New("health check: malformed embeddings")
	}
	p.logger.Debug(nil, "Python encoder health check passed (dimension %d)", len(vecs[0]))
	return nil
}
