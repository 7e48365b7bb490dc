package fxrates

import (
	"bufio"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
)

// UserAgentRotator holds a pool of User-Agent strings loaded once from a
// text file and hands back a uniformly random one per request. Process-wide
// singleton: every adapter fetch shares the same pool.
type UserAgentRotator struct {
	mu         sync.RWMutex
	userAgents []string
}

var (
	uaRotator     *UserAgentRotator
	uaRotatorOnce sync.Once
)

// GetUserAgentRotator returns the process-wide rotator, loading it from
// path on first call. Subsequent calls ignore path and return the existing
// instance.
func GetUserAgentRotator(path string) (*UserAgentRotator, error) {
	var loadErr error
	uaRotatorOnce.Do(func() {
		r := &UserAgentRotator{}
		loadErr = r.Load(path)
		if loadErr == nil {
			uaRotator = r
		}
	})
	if uaRotator == nil {
		if loadErr == nil {
			loadErr = fmt.Errorf("user agent rotator failed to initialize")
		}
		return nil, loadErr
	}
	return uaRotator, nil
}

// Load reads one User-Agent string per line from path, skipping blank lines
// and lines starting with '#'.
func (r *UserAgentRotator) Load(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open user agent file %s: %w", path, err)
	}
	defer file.Close()

	var agents []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		agents = append(agents, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read user agent file %s: %w", path, err)
	}
	if len(agents) == 0 {
		return fmt.Errorf("user agent file %s contains no entries", path)
	}

	r.mu.Lock()
	r.userAgents = agents
	r.mu.Unlock()

	return nil
}

// Random returns a uniformly random User-Agent string from the pool.
func (r *UserAgentRotator) Random() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.userAgents[rand.IntN(len(r.userAgents))]
}
