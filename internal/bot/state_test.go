package bot

import "testing"

func TestStateRegistryBusyFlag(t *testing.T) {
	r := newStateRegistry()

	if !r.tryBeginJob(1) {
		t.Fatalf("first job should be admitted")
	}
	if r.tryBeginJob(1) {
		t.Fatalf("second job must be refused while the first is unresolved")
	}
	if !r.tryBeginJob(2) {
		t.Fatalf("other chats are independent")
	}

	r.endJob(1)
	if !r.tryBeginJob(1) {
		t.Fatalf("chat should be free after endJob")
	}
}

func TestStateRegistrySteps(t *testing.T) {
	r := newStateRegistry()

	if r.getStep(1) != stepIdle {
		t.Fatalf("fresh chat should be idle")
	}
	r.setStep(1, stepAwaitPrompt)
	if r.getStep(1) != stepAwaitPrompt {
		t.Fatalf("step not stored")
	}
	if r.getStep(2) != stepIdle {
		t.Fatalf("steps leak between chats")
	}
}
