package deployment_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nais/sitedeploy/pkg/deployment"
	"github.com/stretchr/testify/assert"
)

func building() deployment.Deployment {
	return deployment.Deployment{
		SiteID:   "s1",
		DeployID: "d1",
		URL:      "https://s1.netlify.app",
		Status:   deployment.StatusBuilding,
	}
}

func TestEmptyState(t *testing.T) {
	state := deployment.NewState()
	_, ok := state.Get()
	assert.False(t, ok)
	assert.Equal(t, uint64(0), state.Generation())

	_, written := state.Update(0, deployment.StatusReady)
	assert.False(t, written)
}

func TestBeginAndUpdate(t *testing.T) {
	state := deployment.NewState()
	gen := state.Begin(building())
	assert.Equal(t, uint64(1), gen)

	d, ok := state.Get()
	assert.True(t, ok)
	assert.Equal(t, "s1", d.SiteID)
	assert.Equal(t, "d1", d.DeployID)
	assert.Equal(t, "https://s1.netlify.app", d.URL)
	assert.Equal(t, deployment.StatusBuilding, d.Status)

	// building -> building is not a write
	_, written := state.Update(gen, deployment.StatusBuilding)
	assert.False(t, written)

	d, written = state.Update(gen, deployment.StatusReady)
	assert.True(t, written)
	assert.Equal(t, deployment.StatusReady, d.Status)
}

func TestTerminalStatusIsFinal(t *testing.T) {
	for _, terminal := range []deployment.Status{deployment.StatusReady, deployment.StatusError} {
		state := deployment.NewState()
		gen := state.Begin(building())

		_, written := state.Update(gen, terminal)
		assert.True(t, written)

		for _, next := range []deployment.Status{deployment.StatusBuilding, deployment.StatusReady, deployment.StatusError, deployment.StatusPending} {
			d, written := state.Update(gen, next)
			assert.False(t, written)
			assert.Equal(t, terminal, d.Status)
		}
	}
}

func TestStaleGenerationIsDropped(t *testing.T) {
	state := deployment.NewState()
	first := state.Begin(building())

	second := building()
	second.DeployID = "d2"
	gen := state.Begin(second)
	assert.Equal(t, first+1, gen)

	_, written := state.Update(first, deployment.StatusError)
	assert.False(t, written)

	d, _ := state.Get()
	assert.Equal(t, "d2", d.DeployID)
	assert.Equal(t, deployment.StatusBuilding, d.Status)
}

func TestSubscribe(t *testing.T) {
	state := deployment.NewState()
	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan deployment.Deployment, 4)

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		state.Subscribe(ctx, updates)
	}()

	// wait for the subscription to register
	assert.Eventually(t, func() bool {
		gen := state.Begin(building())
		select {
		case d := <-updates:
			_, _ = state.Update(gen, deployment.StatusReady)
			return d.Status == deployment.StatusBuilding
		case <-time.After(10 * time.Millisecond):
			return false
		}
	}, time.Second, 20*time.Millisecond)

	d := <-updates
	assert.Equal(t, deployment.StatusReady, d.Status)

	cancel()
	wg.Wait()

	_, open := <-updates
	assert.False(t, open)
}

func TestSubscribeSharedContext(t *testing.T) {
	state := deployment.NewState()
	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan deployment.Deployment, 1)
	second := make(chan deployment.Deployment, 1)

	wg := sync.WaitGroup{}
	wg.Add(2)
	go func() {
		defer wg.Done()
		state.Subscribe(ctx, first)
	}()
	go func() {
		defer wg.Done()
		state.Subscribe(ctx, second)
	}()

	assert.Eventually(t, func() bool {
		return state.Subscribers() == 2
	}, time.Second, time.Millisecond)

	state.Begin(building())
	assert.Equal(t, deployment.StatusBuilding, (<-first).Status)
	assert.Equal(t, deployment.StatusBuilding, (<-second).Status)

	cancel()
	wg.Wait()
	assert.Equal(t, 0, state.Subscribers())

	_, open := <-first
	assert.False(t, open)
	_, open = <-second
	assert.False(t, open)
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, deployment.StatusReady, deployment.ParseStatus("ready"))
	assert.Equal(t, deployment.StatusError, deployment.ParseStatus("error"))
	assert.Equal(t, deployment.StatusBuilding, deployment.ParseStatus("building"))
	assert.Equal(t, deployment.StatusBuilding, deployment.ParseStatus("uploading"))
	assert.Equal(t, deployment.StatusBuilding, deployment.ParseStatus("processing"))
	assert.True(t, deployment.StatusReady.Finished())
	assert.True(t, deployment.StatusError.Finished())
	assert.False(t, deployment.StatusBuilding.Finished())
	assert.False(t, deployment.StatusPending.Finished())
}
