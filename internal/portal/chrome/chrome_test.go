package chrome

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	c := Config{}.withDefaults()
	assert.Equal(t, 10*time.Second, c.StepTimeout)
	assert.Equal(t, 8*time.Second, c.ValidationWait)

	c = Config{StepTimeout: time.Minute, ValidationWait: time.Second}.withDefaults()
	assert.Equal(t, time.Minute, c.StepTimeout)
	assert.Equal(t, time.Second, c.ValidationWait)
}

func TestStepContextDiesWithCaller(t *testing.T) {
	d := &Driver{cfg: Config{StepTimeout: time.Minute}, ctx: context.Background()}

	caller, cancelCaller := context.WithCancel(context.Background())
	tctx, cancel := d.stepContext(caller)
	defer cancel()

	require.NoError(t, tctx.Err())
	cancelCaller()

	select {
	case <-tctx.Done():
	case <-time.After(time.Second):
		t.Fatal("step context survived caller cancellation")
	}
}

func TestStepContextDiesWithBrowser(t *testing.T) {
	bctx, cancelBrowser := context.WithCancel(context.Background())
	d := &Driver{cfg: Config{StepTimeout: time.Minute}, ctx: bctx}

	tctx, cancel := d.stepContext(context.Background())
	defer cancel()

	cancelBrowser()
	select {
	case <-tctx.Done():
	case <-time.After(time.Second):
		t.Fatal("step context survived browser teardown")
	}
}
