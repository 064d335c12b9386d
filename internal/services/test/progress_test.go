package services_test

import (
	"testing"

	"github.com/streamspace/streamspace-services-content/internal/services"
)

func TestProgressMonotonic(t *testing.T) {
	p := services.NewUploadProgress(100)

	p.Observe(50, 100)
	if f := p.Fraction(); f != 0.5 {
		t.Fatalf("Fraction() = %v, want 0.5", f)
	}

	// 回退的进度值被忽略。
	p.Observe(30, 100)
	if f := p.Fraction(); f != 0.5 {
		t.Fatalf("Fraction() after regression = %v, want 0.5", f)
	}
}

func TestProgressCappedBeforeCompletion(t *testing.T) {
	p := services.NewUploadProgress(100)

	p.Observe(100, 100)
	if f := p.Fraction(); f != 0.99 {
		t.Fatalf("Fraction() before completion = %v, want 0.99", f)
	}
	if loaded, total := p.Snapshot(); loaded != 99 || total != 100 {
		t.Fatalf("Snapshot() before completion = (%d, %d), want (99, 100)", loaded, total)
	}

	p.Complete()
	if f := p.Fraction(); f != 1.0 {
		t.Fatalf("Fraction() after completion = %v, want 1.0", f)
	}
	if loaded, total := p.Snapshot(); loaded != 100 || total != 100 {
		t.Fatalf("Snapshot() after completion = (%d, %d), want (100, 100)", loaded, total)
	}
}

func TestProgressUnknownTotal(t *testing.T) {
	p := services.NewUploadProgress(0)

	p.Observe(10, 0)
	if f := p.Fraction(); f != 0 {
		t.Fatalf("Fraction() with unknown total = %v, want 0", f)
	}
}
