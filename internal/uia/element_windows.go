//go:build windows

package uia

import (
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

// COMElement wraps a raw IUIAutomationElement pointer behind the Element
// interface. The wrapper owns one COM reference: Wrap adds it, Close
// releases it, and a finalizer backstops leaked wrappers.
//
// Only the vtable slots the subsystem needs are called directly; everything
// else stays behind the opaque pointer.
type COMElement struct {
	ptr uintptr
}

var (
	oleaut32 = windows.NewLazySystemDLL("oleaut32.dll")

	procSafeArrayAccessData   = oleaut32.NewProc("SafeArrayAccessData")
	procSafeArrayUnaccessData = oleaut32.NewProc("SafeArrayUnaccessData")
	procSafeArrayGetLBound    = oleaut32.NewProc("SafeArrayGetLBound")
	procSafeArrayGetUBound    = oleaut32.NewProc("SafeArrayGetUBound")
	procSafeArrayDestroy      = oleaut32.NewProc("SafeArrayDestroy")
)

// IUIAutomationElement vtable slots (after the three IUnknown slots).
const (
	vtblAddRef       = 1
	vtblRelease      = 2
	vtblGetRuntimeID = 4
)

// WrapCOMElement takes its own reference (AddRef) on a raw
// IUIAutomationElement pointer, so the caller may release its own.
func WrapCOMElement(ptr uintptr) (*COMElement, error) {
	if ptr == 0 {
		return nil, ErrInvalidArgument
	}
	e := &COMElement{ptr: ptr}
	e.call(vtblAddRef)
	runtime.SetFinalizer(e, (*COMElement).Close)
	return e, nil
}

// Close releases the wrapper's COM reference. Safe to call more than once.
func (e *COMElement) Close() error {
	if e.ptr != 0 {
		e.call(vtblRelease)
		e.ptr = 0
		runtime.SetFinalizer(e, nil)
	}
	return nil
}

// call invokes a vtable slot with the element as the implicit this pointer.
// The first word of a COM object is the address of its vtable.
func (e *COMElement) call(slot uintptr, args ...uintptr) uintptr {
	vtbl := *(*uintptr)(unsafe.Pointer(e.ptr))
	fn := *(*uintptr)(unsafe.Pointer(vtbl + slot*unsafe.Sizeof(uintptr(0))))
	callArgs := append([]uintptr{e.ptr}, args...)
	ret, _, _ := syscall.SyscallN(fn, callArgs...)
	return ret
}

// RuntimeID fetches the element's runtime id via
// IUIAutomationElement::GetRuntimeId and decodes the returned SAFEARRAY.
func (e *COMElement) RuntimeID() ([]int32, error) {
	if e.ptr == 0 {
		return nil, ErrInvalidArgument
	}
	var sa uintptr
	hr := HRESULT(e.call(vtblGetRuntimeID, uintptr(unsafe.Pointer(&sa))))
	if hr != SOK || sa == 0 {
		return nil, fmt.Errorf("%w: GetRuntimeId hr=%#x", ErrRuntimeIDUnavailable, uint32(hr))
	}
	defer procSafeArrayDestroy.Call(sa)
	id, err := safeArrayToInt32s(sa)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRuntimeIDUnavailable, err)
	}
	return id, nil
}

func (e *COMElement) String() string {
	return fmt.Sprintf("comelement[%#x]", e.ptr)
}

// safeArrayToInt32s copies a one-dimensional SAFEARRAY of VT_I4 into a Go
// slice.
func safeArrayToInt32s(sa uintptr) ([]int32, error) {
	var lower, upper int32
	if hr, _, _ := procSafeArrayGetLBound.Call(sa, 1, uintptr(unsafe.Pointer(&lower))); HRESULT(hr) != SOK {
		return nil, fmt.Errorf("SafeArrayGetLBound hr=%#x", uint32(hr))
	}
	if hr, _, _ := procSafeArrayGetUBound.Call(sa, 1, uintptr(unsafe.Pointer(&upper))); HRESULT(hr) != SOK {
		return nil, fmt.Errorf("SafeArrayGetUBound hr=%#x", uint32(hr))
	}
	n := int(upper-lower) + 1
	if n <= 0 {
		return nil, nil
	}
	var data uintptr
	if hr, _, _ := procSafeArrayAccessData.Call(sa, uintptr(unsafe.Pointer(&data))); HRESULT(hr) != SOK {
		return nil, fmt.Errorf("SafeArrayAccessData hr=%#x", uint32(hr))
	}
	defer procSafeArrayUnaccessData.Call(sa)

	out := make([]int32, n)
	src := unsafe.Slice((*int32)(unsafe.Pointer(data)), n)
	copy(out, src)
	return out, nil
}
