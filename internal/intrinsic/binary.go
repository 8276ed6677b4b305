package intrinsic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/phobologic/reqcheck/internal/model"
)

// DefaultTimeout bounds one run of the PHP binary.
const DefaultTimeout = 30 * time.Second

const lookupScript = `$out = [];
foreach (array_slice($argv, 1) as $name) {
    if (!extension_loaded($name)) { continue; }
    $e = new ReflectionExtension($name);
    $out[strtolower($name)] = [
        'classes' => $e->getClassNames(),
        'functions' => array_keys($e->getFunctions()),
        'constants' => array_keys($e->getConstants()),
    ];
}
echo json_encode((object) $out);`

const availableScript = `echo json_encode(get_loaded_extensions());`

// Binary asks a PHP interpreter which symbols its extensions declare.
type Binary struct {
	Path    string
	Timeout time.Duration
}

// NewBinary returns a provider running path, or "php" from PATH when path is
// empty.
func NewBinary(path string) *Binary {
	if path == "" {
		path = "php"
	}
	return &Binary{Path: path, Timeout: DefaultTimeout}
}

func (b *Binary) Lookup(ctx context.Context, names []string) (map[string][]model.Symbol, error) {
	names = Normalize(names)
	if len(names) == 0 {
		return map[string][]model.Symbol{}, nil
	}

	var raw map[string]Extension
	if err := b.run(ctx, lookupScript, names, &raw); err != nil {
		return nil, err
	}
	out := make(map[string][]model.Symbol, len(raw))
	for name, ext := range raw {
		out[strings.ToLower(name)] = ext.Symbols()
	}
	return out, nil
}

func (b *Binary) Available(ctx context.Context) ([]string, error) {
	var names []string
	if err := b.run(ctx, availableScript, nil, &names); err != nil {
		return nil, err
	}
	return Normalize(names), nil
}

func (b *Binary) run(ctx context.Context, script string, args []string, v any) error {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, b.Path, append([]string{"-r", script, "--"}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("running %s: %w: %s", b.Path, err, msg)
		}
		return fmt.Errorf("running %s: %w", b.Path, err)
	}
	if err := json.Unmarshal(out, v); err != nil {
		return fmt.Errorf("decoding %s output: %w", b.Path, err)
	}
	return nil
}
