package thermal

import "testing"

func TestStateForBudget_WorkedExample(t *testing.T) {
	power2state := []float64{1500, 1000, 500, 0}
	got := stateForBudget(power2state, 900)
	if got != 2 {
		t.Errorf("budget=900: got state %d, want 2", got)
	}
}

func TestStateForBudget_EqualBoundaryFallsToNextMoreThrottledState(t *testing.T) {
	power2state := []float64{1500, 1000, 500, 0}
	got := stateForBudget(power2state, 1000)
	if got != 2 {
		t.Errorf("budget==power2state[j] is not strictly greater: got %d, want 2", got)
	}
}

func TestStateForBudget_BudgetAboveAllReturnsZero(t *testing.T) {
	got := stateForBudget([]float64{1500, 1000, 500, 0}, 2000)
	if got != 0 {
		t.Errorf("got %d, want 0", got)
	}
}

func TestStateForBudget_BudgetBelowAllReturnsLastState(t *testing.T) {
	got := stateForBudget([]float64{1500, 1000, 500, 0}, -1)
	if got != 3 {
		t.Errorf("got %d, want 3", got)
	}
}

func TestAllocatePower_SplitsByWeight(t *testing.T) {
	info := &SensorInfo{}
	info.Throttling.CdevRequest = []string{"cpu_cdev", "gpu_cdev"}
	info.Throttling.CdevWeight = []float64{3, 1}
	cdevs := map[string]*CdevInfo{
		"cpu_cdev": {Name: "cpu_cdev", Power2State: []float64{1500, 1000, 500, 0}},
		"gpu_cdev": {Name: "gpu_cdev", Power2State: []float64{800, 400, 0}},
	}
	status := newSensorStatus()

	AllocatePower("sen", info, status, cdevs, 1000)

	// cpu gets 750mW of the 1000mW budget (weight 3/4); 750 > power2state[2]=500 -> state 2.
	if status.PidRequestMap["cpu_cdev"] != 2 {
		t.Errorf("cpu_cdev: got state %d, want 2", status.PidRequestMap["cpu_cdev"])
	}
	// gpu gets 250mW (weight 1/4) -> not > power2state[0]=800 nor > [1]=400 -> last index 2.
	if status.PidRequestMap["gpu_cdev"] != 2 {
		t.Errorf("gpu_cdev: got state %d, want 2", status.PidRequestMap["gpu_cdev"])
	}
}

func TestAllocatePower_ZeroWeightSkipsAllocation(t *testing.T) {
	info := &SensorInfo{}
	info.Throttling.CdevRequest = []string{"cpu_cdev"}
	info.Throttling.CdevWeight = []float64{0}
	cdevs := map[string]*CdevInfo{
		"cpu_cdev": {Name: "cpu_cdev", Power2State: []float64{1000, 0}},
	}
	status := newSensorStatus()
	status.PidRequestMap["cpu_cdev"] = 1 // pre-existing request must survive untouched

	AllocatePower("sen", info, status, cdevs, 500)

	if status.PidRequestMap["cpu_cdev"] != 1 {
		t.Errorf("zero total weight must leave PidRequestMap untouched: got %d, want 1", status.PidRequestMap["cpu_cdev"])
	}
}

func TestAllocatePower_MonotoneInBudget(t *testing.T) {
	info := &SensorInfo{}
	info.Throttling.CdevRequest = []string{"cdev"}
	info.Throttling.CdevWeight = []float64{1}
	cdevs := map[string]*CdevInfo{
		"cdev": {Name: "cdev", Power2State: []float64{2000, 1500, 1000, 500, 0}},
	}

	prevState := -1
	for budget := 2500.0; budget >= -100; budget -= 100 {
		status := newSensorStatus()
		AllocatePower("sen", info, status, cdevs, budget)
		state := status.PidRequestMap["cdev"]
		if state < prevState {
			t.Errorf("state decreased as budget fell: budget=%v state=%d prevState=%d", budget, state, prevState)
		}
		prevState = state
	}
}
