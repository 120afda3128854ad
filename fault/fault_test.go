package fault_test

import (
	"testing"

	"github.com/bitmark-inc/peerlog/fault"
)

func TestErrorClasses(t *testing.T) {

	tests := []struct {
		err      error
		isExists bool
		isInvalid bool
		isNotFound bool
		isProcess bool
	}{
		{fault.ErrAlreadyInitialised, false, false, false, true},
		{fault.ErrNotInitialised, false, false, false, true},
		{fault.ErrClosed, false, false, false, true},
		{fault.ErrHashMismatch, false, true, false, false},
		{fault.ErrSignatureInvalid, false, true, false, false},
		{fault.ErrParentNotFound, false, false, true, false},
		{fault.ErrNoRoute, false, false, true, false},
		{fault.ErrNotFoundIdentity, false, false, true, false},
	}

	for i, item := range tests {
		if got := fault.IsErrExists(item.err); got != item.isExists {
			t.Errorf("%d: IsErrExists(%v) = %t  expected: %t", i, item.err, got, item.isExists)
		}
		if got := fault.IsErrInvalid(item.err); got != item.isInvalid {
			t.Errorf("%d: IsErrInvalid(%v) = %t  expected: %t", i, item.err, got, item.isInvalid)
		}
		if got := fault.IsErrNotFound(item.err); got != item.isNotFound {
			t.Errorf("%d: IsErrNotFound(%v) = %t  expected: %t", i, item.err, got, item.isNotFound)
		}
		if got := fault.IsErrProcess(item.err); got != item.isProcess {
			t.Errorf("%d: IsErrProcess(%v) = %t  expected: %t", i, item.err, got, item.isProcess)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	const expected = "entry hash does not match canonical bytes"
	if fault.ErrHashMismatch.Error() != expected {
		t.Errorf("ErrHashMismatch.Error() = %q  expected: %q", fault.ErrHashMismatch.Error(), expected)
	}
}

func TestErrorEquality(t *testing.T) {
	// comparing the same named error value twice must succeed, mirroring
	// how callers switch on fault.Err* sentinels
	var err error = fault.ErrNoRoute
	if err != fault.ErrNoRoute {
		t.Errorf("ErrNoRoute does not compare equal to itself through the error interface")
	}
	if err == fault.ErrTimeout {
		t.Errorf("ErrNoRoute incorrectly compares equal to ErrTimeout")
	}
}
