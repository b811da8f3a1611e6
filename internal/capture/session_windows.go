//go:build windows

package capture

import (
	"fmt"
	"log/slog"
	"syscall"
	"time"
	"unsafe"
)

// dxgiSource implements Source using DXGI Desktop Duplication (pure Go, no
// CGO). One instance is owned by exactly one goroutine; the acquire/extract/
// release cycle of a frame is never concurrent, so there is no lock.
type dxgiSource struct {
	cfg Config

	// D3D11/DXGI COM objects. A zero duplication handle means the session
	// is not ready; Acquire refuses to run until Reinitialize or Reset
	// restores it.
	device      uintptr // ID3D11Device
	context     uintptr // ID3D11DeviceContext
	duplication uintptr // IDXGIOutputDuplication
	staging     uintptr // ID3D11Texture2D (staging, CPU-readable)

	// Duplicated output dimensions from the current duplication mode.
	frameW int
	frameH int

	// Per-frame state between Acquire and Release.
	frameTexture  uintptr // ID3D11Texture2D of the acquired frame
	frameAcquired bool
	mapped        bool
}

func newPlatformSource(cfg Config) (Source, error) {
	if cfg.RegionWidth <= 0 || cfg.RegionHeight <= 0 {
		return nil, fmt.Errorf("%w: invalid staging size %dx%d",
			ErrStagingAllocation, cfg.RegionWidth, cfg.RegionHeight)
	}
	s := &dxgiSource{cfg: cfg}
	if err := s.initAll(); err != nil {
		return nil, err
	}
	slog.Info("DXGI desktop duplication initialized",
		"display", cfg.DisplayIndex,
		"frameW", s.frameW, "frameH", s.frameH,
		"stagingW", cfg.RegionWidth, "stagingH", cfg.RegionHeight)
	return s, nil
}

// initAll builds the full session: device, duplication handle, staging
// texture. Any failure releases everything acquired so far.
func (s *dxgiSource) initAll() error {
	if err := s.initDevice(); err != nil {
		return err
	}
	if err := s.createDuplication(); err != nil {
		s.releaseDevice()
		return err
	}
	if err := s.createStaging(); err != nil {
		comRelease(s.duplication)
		s.duplication = 0
		s.releaseDevice()
		return err
	}
	return nil
}

func (s *dxgiSource) initDevice() error {
	var device, context uintptr
	featureLevel := uint32(d3dFeatureLevel11_0)
	var actualLevel uint32

	flags := uintptr(d3d11CreateDeviceBGRASupport)
	hr, _, _ := procD3D11CreateDevice.Call(
		0,                                      // pAdapter (NULL = default)
		uintptr(d3dDriverTypeHardware),         // DriverType
		0,                                      // Software
		flags,                                  // Flags
		uintptr(unsafe.Pointer(&featureLevel)), // pFeatureLevels
		1,                                      // FeatureLevels count
		uintptr(d3d11SDKVersion),               // SDKVersion
		uintptr(unsafe.Pointer(&device)),       // ppDevice
		uintptr(unsafe.Pointer(&actualLevel)),  // pFeatureLevel
		uintptr(unsafe.Pointer(&context)),      // ppImmediateContext
	)
	if int32(hr) < 0 {
		// Some drivers reject the BGRA flag. Retry with a plain device.
		hr, _, _ = procD3D11CreateDevice.Call(
			0,
			uintptr(d3dDriverTypeHardware),
			0,
			0,
			uintptr(unsafe.Pointer(&featureLevel)),
			1,
			uintptr(d3d11SDKVersion),
			uintptr(unsafe.Pointer(&device)),
			uintptr(unsafe.Pointer(&actualLevel)),
			uintptr(unsafe.Pointer(&context)),
		)
	}
	if int32(hr) < 0 {
		return fmt.Errorf("%w: D3D11CreateDevice 0x%08X", ErrDeviceCreation, uint32(hr))
	}
	s.device = device
	s.context = context
	return nil
}

// createDuplication walks device → adapter → output → IDXGIOutput1 and
// duplicates the configured output, then reads the duplication mode to learn
// the frame dimensions. Requires a valid device; leaves it untouched on
// failure.
func (s *dxgiSource) createDuplication() error {
	// QueryInterface → IDXGIDevice
	var dxgiDevice uintptr
	_, err := comCall(s.device, vtblQueryInterface,
		uintptr(unsafe.Pointer(&iidIDXGIDevice)),
		uintptr(unsafe.Pointer(&dxgiDevice)),
	)
	if err != nil {
		return fmt.Errorf("%w: QueryInterface IDXGIDevice: %v", ErrDuplication, err)
	}
	defer comRelease(dxgiDevice)

	// GetAdapter
	var adapter uintptr
	_, err = comCall(dxgiDevice, dxgiDeviceGetAdapter, uintptr(unsafe.Pointer(&adapter)))
	if err != nil {
		return fmt.Errorf("%w: IDXGIDevice::GetAdapter: %v", ErrDuplication, err)
	}
	defer comRelease(adapter)

	// EnumOutputs
	var output uintptr
	_, err = comCall(adapter, dxgiAdapterEnumOutputs,
		uintptr(s.cfg.DisplayIndex),
		uintptr(unsafe.Pointer(&output)),
	)
	if err != nil {
		return fmt.Errorf("%w: IDXGIAdapter::EnumOutputs(%d): %v",
			ErrDuplication, s.cfg.DisplayIndex, err)
	}

	// QueryInterface → IDXGIOutput1
	var output1 uintptr
	_, err = comCall(output, vtblQueryInterface,
		uintptr(unsafe.Pointer(&iidIDXGIOutput1)),
		uintptr(unsafe.Pointer(&output1)),
	)
	comRelease(output)
	if err != nil {
		return fmt.Errorf("%w: QueryInterface IDXGIOutput1: %v", ErrDuplication, err)
	}
	defer comRelease(output1)

	// DuplicateOutput
	var duplication uintptr
	_, err = comCall(output1, dxgiOutput1DuplicateOutput,
		s.device,
		uintptr(unsafe.Pointer(&duplication)),
	)
	if err != nil {
		return fmt.Errorf("%w: IDXGIOutput1::DuplicateOutput: %v", ErrDuplication, err)
	}

	// Frame dimensions come from the duplication mode. GetDesc is
	// deterministic; probing with AcquireNextFrame can time out during
	// init when the desktop is idle.
	var duplDesc dxgiOutDuplDesc
	hr, _, _ := syscall.SyscallN(
		comVtblFn(duplication, dxgiDuplGetDesc),
		duplication,
		uintptr(unsafe.Pointer(&duplDesc)),
	)
	if int32(hr) < 0 {
		comRelease(duplication)
		return fmt.Errorf("%w: IDXGIOutputDuplication::GetDesc 0x%08X",
			ErrDuplication, uint32(hr))
	}
	w := int(duplDesc.ModeDesc.Width)
	h := int(duplDesc.ModeDesc.Height)
	if w <= 0 || h <= 0 {
		comRelease(duplication)
		return fmt.Errorf("%w: invalid duplication dimensions %dx%d",
			ErrDuplication, w, h)
	}

	s.duplication = duplication
	s.frameW = w
	s.frameH = h
	return nil
}

func (s *dxgiSource) createStaging() error {
	stagingDesc := d3d11Texture2DDesc{
		Width:          uint32(s.cfg.RegionWidth),
		Height:         uint32(s.cfg.RegionHeight),
		MipLevels:      1,
		ArraySize:      1,
		Format:         dxgiFormatB8G8R8A8,
		SampleCount:    1,
		SampleQuality:  0,
		Usage:          d3d11UsageStaging,
		BindFlags:      0,
		CPUAccessFlags: d3d11CPUAccessRead,
		MiscFlags:      0,
	}
	var staging uintptr
	_, err := comCall(s.device, d3d11DeviceCreateTexture2D,
		uintptr(unsafe.Pointer(&stagingDesc)),
		0, // pInitialData
		uintptr(unsafe.Pointer(&staging)),
	)
	if err != nil {
		return fmt.Errorf("%w: CreateTexture2D %dx%d: %v",
			ErrStagingAllocation, s.cfg.RegionWidth, s.cfg.RegionHeight, err)
	}
	s.staging = staging
	return nil
}

// Acquire blocks up to timeout for the next desktop frame.
func (s *dxgiSource) Acquire(timeout time.Duration) (AcquireStatus, error) {
	if s.duplication == 0 {
		return AcquireFailed, fmt.Errorf("capture session not ready")
	}
	if s.frameAcquired {
		// Caller misuse: previous frame was never released.
		return AcquireFailed, fmt.Errorf("previous frame not released")
	}

	var frameInfo dxgiOutDuplFrameInfo
	var resource uintptr
	hr, _, _ := syscall.SyscallN(
		comVtblFn(s.duplication, dxgiDuplAcquireNextFrame),
		s.duplication,
		uintptr(timeout.Milliseconds()),
		uintptr(unsafe.Pointer(&frameInfo)),
		uintptr(unsafe.Pointer(&resource)),
	)

	switch uint32(hr) {
	case dxgiErrWaitTimeout:
		return NoFrame, nil
	case dxgiErrAccessLost, dxgiErrInvalidCall:
		return AccessLost, nil
	case dxgiErrDeviceRemoved, dxgiErrDeviceReset:
		return DeviceLost, nil
	}
	if int32(hr) < 0 {
		return AcquireFailed, fmt.Errorf("AcquireNextFrame: 0x%08X", uint32(hr))
	}

	// A frame with no accumulated updates carries nothing new; hand it
	// straight back and report it like a timeout.
	if frameInfo.AccumulatedFrames == 0 {
		comRelease(resource)
		s.releaseFrame()
		return NoFrame, nil
	}

	// QueryInterface → ID3D11Texture2D
	var texture uintptr
	_, err := comCall(resource, vtblQueryInterface,
		uintptr(unsafe.Pointer(&iidID3D11Texture2D)),
		uintptr(unsafe.Pointer(&texture)),
	)
	comRelease(resource)
	if err != nil {
		s.releaseFrame()
		return AcquireFailed, fmt.Errorf("QueryInterface ID3D11Texture2D: %w", err)
	}

	s.frameTexture = texture
	s.frameAcquired = true
	return FrameReady, nil
}

// Extract copies the clamped region of the held frame into the staging
// texture and maps it for CPU reads. The view dies at Release.
func (s *dxgiSource) Extract(roi Region) (PixelView, error) {
	if !s.frameAcquired || s.frameTexture == 0 {
		return PixelView{}, fmt.Errorf("no frame held")
	}
	if s.mapped {
		return PixelView{}, fmt.Errorf("staging texture already mapped")
	}

	// Never copy more than the staging texture can hold, and never read
	// outside the frame.
	if roi.Width > s.cfg.RegionWidth {
		roi.Width = s.cfg.RegionWidth
	}
	if roi.Height > s.cfg.RegionHeight {
		roi.Height = s.cfg.RegionHeight
	}
	roi = roi.ClampTo(s.frameW, s.frameH)

	box := d3d11Box{
		Left:   uint32(roi.X),
		Top:    uint32(roi.Y),
		Front:  0,
		Right:  uint32(roi.X + roi.Width),
		Bottom: uint32(roi.Y + roi.Height),
		Back:   1,
	}

	// CopySubresourceRegion is void — errors surface via a failed Map.
	syscall.SyscallN(
		comVtblFn(s.context, d3d11CtxCopySubresourceRegion),
		s.context,
		s.staging, // pDstResource
		0,         // DstSubresource
		0, 0, 0,   // DstX, DstY, DstZ
		s.frameTexture, // pSrcResource
		0,              // SrcSubresource
		uintptr(unsafe.Pointer(&box)),
	)

	// The GPU copy has been issued; the frame texture is no longer needed.
	comRelease(s.frameTexture)
	s.frameTexture = 0

	var mapped d3d11MappedSubresource
	hr, _, _ := syscall.SyscallN(
		comVtblFn(s.context, d3d11CtxMap),
		s.context,
		s.staging,
		0, // Subresource
		d3d11MapRead,
		0, // Flags
		uintptr(unsafe.Pointer(&mapped)),
	)
	if int32(hr) < 0 {
		return PixelView{}, fmt.Errorf("Map staging texture: 0x%08X", uint32(hr))
	}
	s.mapped = true

	stride := int(mapped.RowPitch)
	pix := unsafe.Slice((*byte)(unsafe.Pointer(mapped.PData)), roi.Height*stride)
	return PixelView{
		Pix:    pix,
		Stride: stride,
		Width:  roi.Width,
		Height: roi.Height,
	}, nil
}

// Release unmaps the staging texture and returns the frame to the platform.
// Safe on every exit path, held frame or not.
func (s *dxgiSource) Release() {
	if s.mapped {
		syscall.SyscallN(comVtblFn(s.context, d3d11CtxUnmap), s.context, s.staging, 0)
		s.mapped = false
	}
	if s.frameTexture != 0 {
		comRelease(s.frameTexture)
		s.frameTexture = 0
	}
	if s.frameAcquired {
		s.releaseFrame()
		s.frameAcquired = false
	}
}

// releaseFrame hands the current frame back to the duplication. Failures are
// logged, not propagated — the next AcquireNextFrame surfaces any real
// damage as AccessLost.
func (s *dxgiSource) releaseFrame() {
	hr, _, _ := syscall.SyscallN(comVtblFn(s.duplication, dxgiDuplReleaseFrame), s.duplication)
	if int32(hr) < 0 && uint32(hr) != dxgiErrInvalidCall {
		slog.Warn("ReleaseFrame failed", "hresult", fmt.Sprintf("0x%08X", uint32(hr)))
	}
}

// Reinitialize drops only the duplication handle and recreates it. Used
// after AccessLost: the device, context and staging texture stay live.
func (s *dxgiSource) Reinitialize() error {
	s.Release()
	if s.duplication != 0 {
		comRelease(s.duplication)
		s.duplication = 0
	}
	if err := s.createDuplication(); err != nil {
		return err
	}
	slog.Info("duplication handle recreated",
		"frameW", s.frameW, "frameH", s.frameH)
	return nil
}

// Reset rebuilds the whole session after a device-level failure.
func (s *dxgiSource) Reset() error {
	s.Release()
	s.releaseAll()
	if err := s.initAll(); err != nil {
		return err
	}
	slog.Info("capture session rebuilt after device loss",
		"frameW", s.frameW, "frameH", s.frameH)
	return nil
}

func (s *dxgiSource) Bounds() (int, int) {
	return s.frameW, s.frameH
}

// Close releases all session resources.
func (s *dxgiSource) Close() error {
	s.Release()
	s.releaseAll()
	return nil
}

// releaseAll tears down in reverse dependency order: duplication, staging,
// context, device.
func (s *dxgiSource) releaseAll() {
	if s.duplication != 0 {
		comRelease(s.duplication)
		s.duplication = 0
	}
	if s.staging != 0 {
		comRelease(s.staging)
		s.staging = 0
	}
	s.releaseDevice()
}

func (s *dxgiSource) releaseDevice() {
	if s.context != 0 {
		comRelease(s.context)
		s.context = 0
	}
	if s.device != 0 {
		comRelease(s.device)
		s.device = 0
	}
}

// primaryDisplaySize queries the primary display's pixel dimensions.
func primaryDisplaySize() (int, int, error) {
	w, _, _ := procGetSystemMetrics.Call(smCxScreen)
	h, _, _ := procGetSystemMetrics.Call(smCyScreen)
	if w == 0 || h == 0 {
		return 0, 0, fmt.Errorf("GetSystemMetrics returned zero dimensions")
	}
	return int(w), int(h), nil
}

var _ Source = (*dxgiSource)(nil)
