package cron

import "testing"

func TestRegistryKeepsOrderAndDropsDuplicates(t *testing.T) {
	reconcileJob := &testJob{name: "checkout_reconcile"}
	expiryJob := &testJob{name: "account_expiry"}

	registry := NewRegistry(reconcileJob, nil, expiryJob)
	if registry.Register(&testJob{name: "checkout_reconcile"}) {
		t.Fatalf("duplicate job name should be rejected")
	}

	names := registry.Names()
	if len(names) != 2 || names[0] != "checkout_reconcile" || names[1] != "account_expiry" {
		t.Fatalf("unexpected job order %v", names)
	}

	jobs := registry.Jobs()
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("Jobs must return a copy")
	}
}
