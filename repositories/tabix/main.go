package tabix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"proteinpaint/api/models"
	"proteinpaint/api/models/apperror"
	"proteinpaint/api/models/records"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// tabix prints informational messages on stderr while fetching remote
// indexes; output with this prefix is not an error
const BenignStderrPrefix = "[M::test_and_fetch]"

// other htslib tools also narrate on stderr without failing
var benignStderrPrefixes = []string{
	BenignStderrPrefix,
	"[mpileup]",
	"[fai_load]",
}

// Executor fans out one external-tool subprocess per genomic region
// and merges their line output in region order. All downstream
// aggregators (svcnv, junction, expression, ase) query through it.
type Executor struct {
	MaxConcurrent int64
	Timeout       time.Duration
}

func NewExecutor(cfg *models.Config) *Executor {
	maxConcurrent := int64(cfg.Query.MaxConcurrentRegionQueries)
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Executor{
		MaxConcurrent: maxConcurrent,
		Timeout:       time.Duration(cfg.Query.SubprocessTimeoutSeconds) * time.Second,
	}
}

// QueryRegions runs `executable fixedArgs... chr:start-stop` once per
// region, all regions concurrently up to the executor's bound, and
// returns one line slice per region in the order the regions were
// supplied. Any region failure discards the whole batch.
func (e *Executor) QueryRegions(ctx context.Context, executable string, fixedArgs []string, regions []records.GenomicRegion, workingDir string) ([][]string, error) {
	results := make([][]string, len(regions))

	sem := semaphore.NewWeighted(e.MaxConcurrent)
	eg, egCtx := errgroup.WithContext(ctx)

	for i, region := range regions {
		i, region := i, region

		eg.Go(func() error {
			if acquireErr := sem.Acquire(egCtx, 1); acquireErr != nil {
				return acquireErr
			}
			defer sem.Release(1)

			args := append(append([]string{}, fixedArgs...), region.String())
			lines, runErr := e.run(egCtx, executable, args, workingDir, nil)
			if runErr != nil {
				return runErr
			}
			results[i] = lines
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Header returns the header lines of an indexed file (tabix -H).
func (e *Executor) Header(ctx context.Context, tabixBin string, file string, workingDir string) ([]string, error) {
	return e.run(ctx, tabixBin, []string{"-H", file}, workingDir, nil)
}

// Run executes an arbitrary tool invocation (samtools depth, bcftools
// mpileup, ...) under the same timeout/stderr policy as region queries.
func (e *Executor) Run(ctx context.Context, executable string, args []string, workingDir string, stdin []byte) ([]string, error) {
	return e.run(ctx, executable, args, workingDir, stdin)
}

func (e *Executor) run(ctx context.Context, executable string, args []string, workingDir string, stdin []byte) ([]string, error) {
	runCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, executable, args...)
	if workingDir != "" {
		// tabix looks the index up relative to the working directory
		// for URL-based files
		cmd.Dir = workingDir
	}
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	runErr := cmd.Run()

	if ctxErr := runCtx.Err(); ctxErr != nil {
		// cancelled or timed out; the subprocess has been killed
		return nil, apperror.Wrap(apperror.ExecError, fmt.Sprintf("%s %s interrupted", executable, strings.Join(args, " ")), ctxErr)
	}

	if runErr != nil {
		var execErr *exec.Error
		if errors.As(runErr, &execErr) {
			// spawn failure (executable not found) is distinct from a
			// tool failure
			return nil, apperror.Wrap(apperror.ExecError, fmt.Sprintf("cannot spawn %s", executable), runErr)
		}
		return nil, apperror.Newf(apperror.ExecError, "%s exited with error: %s", executable, strings.TrimSpace(stderr.String()))
	}

	if stderrText := strings.TrimSpace(stderr.String()); stderrText != "" && !StderrIsBenign(stderrText) {
		return nil, apperror.Newf(apperror.ExecError, "%s reported: %s", executable, stderrText)
	}

	return splitLines(stdout.String()), nil
}

// StderrIsBenign reports whether every stderr line carries a known
// informational htslib prefix.
func StderrIsBenign(stderrText string) bool {
	for _, line := range strings.Split(stderrText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		benign := false
		for _, prefix := range benignStderrPrefixes {
			if strings.HasPrefix(line, prefix) {
				benign = true
				break
			}
		}
		if !benign {
			return false
		}
	}
	return true
}

func splitLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
