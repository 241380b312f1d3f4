package intersection

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anggasct/phaser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPlan = `
name: main-and-5th
lights:
  - name: main
    cycle_unit: 1ms
  - name: fifth
    initial_phase: green
    cycle_unit: 1ms
    queue_order: fifo
`

type faultySource struct{}

func (faultySource) Uint64() uint64 { panic("bad source") }

func fastPlan(t *testing.T) Plan {
	t.Helper()
	plan, err := ParsePlan([]byte(testPlan))
	require.NoError(t, err)
	return plan
}

func TestParsePlan(t *testing.T) {
	plan := fastPlan(t)

	assert.Equal(t, "main-and-5th", plan.Name)
	require.Len(t, plan.Lights, 2)

	main := plan.Lights[0]
	assert.Equal(t, "main", main.Name)
	assert.Equal(t, phaser.Red, main.InitialPhase)
	assert.Equal(t, time.Millisecond, main.CycleUnit)
	assert.Equal(t, 4, main.CycleMin, "unset fields keep their defaults")
	assert.Equal(t, 2, main.GateIterations)

	fifth := plan.Lights[1]
	assert.Equal(t, phaser.Green, fifth.InitialPhase)
	assert.Equal(t, phaser.OrderFIFO, fifth.QueueOrder)
}

func TestParsePlan_Invalid(t *testing.T) {
	tests := map[string]string{
		"no lights":  "name: empty\n",
		"duplicate":  "lights:\n  - name: a\n  - name: a\n",
		"empty name": "lights:\n  - name: \"\"\n",
		"bad config": "lights:\n  - name: a\n    cycle_min: 10\n",
		"bad phase":  "lights:\n  - name: a\n    initial_phase: blue\n",
		"not a plan": "lights: 3\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePlan([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testPlan), 0o644))

	plan, err := LoadPlan(path)
	require.NoError(t, err)
	assert.Len(t, plan.Lights, 2)

	_, err = LoadPlan(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUniformPlan(t *testing.T) {
	seed := uint64(10)
	cfg := phaser.DefaultConfig()
	cfg.Seed = &seed

	plan := UniformPlan("grid", 3, cfg)
	require.NoError(t, plan.Validate())
	require.Len(t, plan.Lights, 3)

	for i, light := range plan.Lights {
		assert.Equal(t, []string{"light-1", "light-2", "light-3"}[i], light.Name)
		require.NotNil(t, light.Seed)
		assert.Equal(t, seed+uint64(i), *light.Seed)
	}
	assert.Equal(t, uint64(10), seed, "the base seed is not modified")
}

func TestIntersection_CrossAndShutdown(t *testing.T) {
	in, err := New(fastPlan(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"main", "fifth"}, in.Streets())
	assert.Equal(t, "main-and-5th", in.Name())

	require.NoError(t, in.Start(context.Background()))
	assert.ErrorIs(t, in.Start(context.Background()), phaser.ErrAlreadyStarted)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, street := range in.Streets() {
		vehicle := NewVehicle(street)
		require.NoError(t, in.Cross(ctx, vehicle), street)

		light, ok := in.Light(street)
		require.True(t, ok)
		assert.Equal(t, phaser.SchedulerRunning, light.Scheduler().State())
	}

	assert.NoError(t, in.Shutdown())
	for _, street := range in.Streets() {
		light, _ := in.Light(street)
		assert.Equal(t, phaser.SchedulerStopped, light.Scheduler().State())
	}
}

func TestIntersection_UnknownStreet(t *testing.T) {
	in, err := New(fastPlan(t))
	require.NoError(t, err)

	err = in.Cross(context.Background(), NewVehicle("elm"))
	assert.ErrorIs(t, err, ErrUnknownStreet)
}

func TestIntersection_NotRunning(t *testing.T) {
	in, err := New(fastPlan(t))
	require.NoError(t, err)

	assert.ErrorIs(t, in.Wait(), ErrNotRunning)
	assert.ErrorIs(t, in.Shutdown(), ErrNotRunning)
}

func TestIntersection_ShutdownReleasesVehicles(t *testing.T) {
	cfg := phaser.DefaultConfig()
	cfg.CycleUnit = time.Hour
	in, err := New(UniformPlan("slow", 2, cfg))
	require.NoError(t, err)
	require.NoError(t, in.Start(context.Background()))

	result := make(chan error, 1)
	go func() {
		result <- in.Cross(context.Background(), NewVehicle("light-1"))
	}()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, in.Shutdown())

	select {
	case err := <-result:
		assert.ErrorIs(t, err, phaser.ErrQueueClosed)
	case <-time.After(time.Second):
		t.Fatal("vehicle was not released by Shutdown")
	}
}

func TestIntersection_FaultPropagates(t *testing.T) {
	in, err := New(fastPlan(t), phaser.WithRandSource(faultySource{}))
	require.NoError(t, err)
	require.NoError(t, in.Start(context.Background()))

	err = in.Wait()
	require.Error(t, err)
	assert.Equal(t, phaser.ErrCodeSchedulerPanic, phaser.GetErrorCode(err))

	for _, street := range in.Streets() {
		light, _ := in.Light(street)
		select {
		case <-light.Scheduler().Done():
		case <-time.After(time.Second):
			t.Fatalf("light %s still running after a fault", street)
		}
	}
}

func TestIntersection_SeedOptionPerLight(t *testing.T) {
	cfg := phaser.DefaultConfig()
	cfg.Name = "lane"
	cfg.CycleUnit = time.Millisecond
	cfg.CycleMin = 1
	cfg.CycleMax = 3

	observer := newDrawObserver()
	in, err := New(UniformPlan("seeded", 4, cfg), phaser.WithSeed(7))
	require.NoError(t, err)
	in.AddObserver(observer)

	require.NoError(t, in.Start(context.Background()))
	const draws = 8
	require.Eventually(t, func() bool { return len(observer.first(draws)) == 4 }, 5*time.Second, time.Millisecond)
	require.NoError(t, in.Shutdown())

	sequences := observer.first(draws)
	want := sequences["lane-1"]
	for _, street := range in.Streets() {
		assert.Equal(t, want, sequences[street], "light %s should draw its own seeded sequence", street)
	}
}

func TestIntersection_ParentCancelStopsLights(t *testing.T) {
	cfg := phaser.DefaultConfig()
	cfg.CycleUnit = time.Hour
	in, err := New(UniformPlan("slow", 3, cfg))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, in.Start(ctx))
	cancel()

	assert.NoError(t, in.Wait())
}

func TestIntersection_Observer(t *testing.T) {
	observer := &countingObserver{}
	in, err := New(fastPlan(t))
	require.NoError(t, err)
	in.AddObserver(observer)

	require.NoError(t, in.Start(context.Background()))
	require.Eventually(t, func() bool { return observer.count() >= 4 }, 5*time.Second, time.Millisecond)
	require.NoError(t, in.Shutdown())
}
