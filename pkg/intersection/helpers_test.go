package intersection

import (
	"sync"

	"github.com/anggasct/phaser"
)

type countingObserver struct {
	phaser.BaseObserver
	mutex   sync.Mutex
	toggles int
}

func (o *countingObserver) OnToggle(event phaser.ToggleEvent) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.toggles++
}

func (o *countingObserver) count() int {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.toggles
}

type drawObserver struct {
	phaser.BaseObserver
	mutex sync.Mutex
	draws map[string][]int
}

func newDrawObserver() *drawObserver {
	return &drawObserver{draws: make(map[string][]int)}
}

func (o *drawObserver) OnSleep(event phaser.SleepEvent) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.draws[event.Scheduler] = append(o.draws[event.Scheduler], event.Units)
}

// first returns the first n draws of every scheduler that has made n draws
func (o *drawObserver) first(n int) map[string][]int {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	result := make(map[string][]int, len(o.draws))
	for name, draws := range o.draws {
		if len(draws) >= n {
			result[name] = append([]int(nil), draws[:n]...)
		}
	}
	return result
}
