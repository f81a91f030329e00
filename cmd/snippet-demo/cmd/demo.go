package cmd

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zoobzio/snippet"
)

const pipelineTag = "pipeline"

var stages = []string{"fetch", "decode", "store"}

// runDemo drives the installed execution path.
func runDemo(logger logrus.FieldLogger, delay time.Duration) error {
	rec := snippet.CaptureWithMessage("warm up", func() {
		time.Sleep(delay)
	})
	logger.WithField("empty", rec.IsEmpty()).Info("closure capture finished")

	if err := runPipeline(delay); err != nil {
		return err
	}
	runThreadLocked(logger, delay)
	return nil
}

// runPipeline starts a tagged token and lets one goroutine per stage add
// its split through Find.
func runPipeline(delay time.Duration) error {
	token := snippet.StartCaptureWithTag(pipelineTag)

	errs := make(chan error, len(stages))
	for _, stage := range stages {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			time.Sleep(delay)
			errs <- snippet.Find(pipelineTag).AddSplit(stage)
		}()
		wg.Wait()
	}
	close(errs)
	for err := range errs {
		if err != nil {
			return err
		}
	}

	token.EndCaptureWithMessage("pipeline complete")
	return nil
}

// runThreadLocked shows that a locked token refuses completion from
// another goroutine.
func runThreadLocked(logger logrus.FieldLogger, delay time.Duration) {
	token := snippet.StartCapture().EnableThreadLock()
	time.Sleep(delay)

	done := make(chan snippet.Record)
	go func() {
		done <- token.EndCapture()
	}()
	refused := <-done
	logger.WithField("refused", refused.IsEmpty()).Info("completion from another goroutine")

	token.EndCapture()
}
