//go:build gpu

package opencl

/*
#cgo LDFLAGS: -lOpenCL
#define CL_TARGET_OPENCL_VERSION 120
#define CL_USE_DEPRECATED_OPENCL_1_2_APIS
#include <CL/cl.h>
#include <stdlib.h>

static const char* cuboidbench_cl_error_string(cl_int status) {
	switch (status) {
	case CL_SUCCESS: return "CL_SUCCESS";
	case CL_DEVICE_NOT_FOUND: return "CL_DEVICE_NOT_FOUND";
	case CL_DEVICE_NOT_AVAILABLE: return "CL_DEVICE_NOT_AVAILABLE";
	case CL_COMPILER_NOT_AVAILABLE: return "CL_COMPILER_NOT_AVAILABLE";
	case CL_MEM_OBJECT_ALLOCATION_FAILURE: return "CL_MEM_OBJECT_ALLOCATION_FAILURE";
	case CL_OUT_OF_RESOURCES: return "CL_OUT_OF_RESOURCES";
	case CL_OUT_OF_HOST_MEMORY: return "CL_OUT_OF_HOST_MEMORY";
	case CL_MEM_COPY_OVERLAP: return "CL_MEM_COPY_OVERLAP";
	case CL_BUILD_PROGRAM_FAILURE: return "CL_BUILD_PROGRAM_FAILURE";
	case CL_MAP_FAILURE: return "CL_MAP_FAILURE";
	case CL_INVALID_VALUE: return "CL_INVALID_VALUE";
	case CL_INVALID_DEVICE_TYPE: return "CL_INVALID_DEVICE_TYPE";
	case CL_INVALID_PLATFORM: return "CL_INVALID_PLATFORM";
	case CL_INVALID_DEVICE: return "CL_INVALID_DEVICE";
	case CL_INVALID_CONTEXT: return "CL_INVALID_CONTEXT";
	case CL_INVALID_QUEUE_PROPERTIES: return "CL_INVALID_QUEUE_PROPERTIES";
	case CL_INVALID_COMMAND_QUEUE: return "CL_INVALID_COMMAND_QUEUE";
	case CL_INVALID_HOST_PTR: return "CL_INVALID_HOST_PTR";
	case CL_INVALID_MEM_OBJECT: return "CL_INVALID_MEM_OBJECT";
	case CL_INVALID_BUFFER_SIZE: return "CL_INVALID_BUFFER_SIZE";
	case CL_INVALID_BINARY: return "CL_INVALID_BINARY";
	case CL_INVALID_BUILD_OPTIONS: return "CL_INVALID_BUILD_OPTIONS";
	case CL_INVALID_PROGRAM: return "CL_INVALID_PROGRAM";
	case CL_INVALID_PROGRAM_EXECUTABLE: return "CL_INVALID_PROGRAM_EXECUTABLE";
	case CL_INVALID_KERNEL_NAME: return "CL_INVALID_KERNEL_NAME";
	case CL_INVALID_KERNEL_DEFINITION: return "CL_INVALID_KERNEL_DEFINITION";
	case CL_INVALID_KERNEL: return "CL_INVALID_KERNEL";
	case CL_INVALID_ARG_INDEX: return "CL_INVALID_ARG_INDEX";
	case CL_INVALID_ARG_VALUE: return "CL_INVALID_ARG_VALUE";
	case CL_INVALID_ARG_SIZE: return "CL_INVALID_ARG_SIZE";
	case CL_INVALID_KERNEL_ARGS: return "CL_INVALID_KERNEL_ARGS";
	case CL_INVALID_WORK_DIMENSION: return "CL_INVALID_WORK_DIMENSION";
	case CL_INVALID_WORK_GROUP_SIZE: return "CL_INVALID_WORK_GROUP_SIZE";
	case CL_INVALID_WORK_ITEM_SIZE: return "CL_INVALID_WORK_ITEM_SIZE";
	case CL_INVALID_GLOBAL_OFFSET: return "CL_INVALID_GLOBAL_OFFSET";
	case CL_INVALID_EVENT_WAIT_LIST: return "CL_INVALID_EVENT_WAIT_LIST";
	case CL_INVALID_OPERATION: return "CL_INVALID_OPERATION";
	default: return "CL_UNKNOWN_ERROR";
	}
}

static cl_command_queue cuboidbench_create_queue(cl_context ctx, cl_device_id dev, cl_int *status) {
#if CL_TARGET_OPENCL_VERSION >= 200
	const cl_queue_properties props[] = {0};
	return clCreateCommandQueueWithProperties(ctx, dev, props, status);
#else
	return clCreateCommandQueue(ctx, dev, 0, status);
#endif
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/cwbudde/cuboidbench/internal/device"
)

const elementSize = 4 // int32

// NewEnumerator returns the OpenCL platform enumerator.
func NewEnumerator() (device.Enumerator, error) {
	return enumerator{}, nil
}

type enumerator struct{}

func (enumerator) Platforms() ([]device.Platform, error) {
	var count C.cl_uint
	if status := C.clGetPlatformIDs(0, nil, &count); status != C.CL_SUCCESS {
		return nil, statusError("clGetPlatformIDs(count)", status)
	}
	if count == 0 {
		return nil, nil
	}

	ids := make([]C.cl_platform_id, int(count))
	if status := C.clGetPlatformIDs(count, &ids[0], nil); status != C.CL_SUCCESS {
		return nil, statusError("clGetPlatformIDs(list)", status)
	}

	platforms := make([]device.Platform, 0, int(count))
	for _, id := range ids {
		name, err := getPlatformString(id, C.CL_PLATFORM_NAME)
		if err != nil {
			return nil, err
		}
		vendor, err := getPlatformString(id, C.CL_PLATFORM_VENDOR)
		if err != nil {
			return nil, err
		}
		version, err := getPlatformString(id, C.CL_PLATFORM_VERSION)
		if err != nil {
			return nil, err
		}
		platforms = append(platforms, &clPlatform{
			id:   id,
			info: device.PlatformInfo{Name: name, Vendor: vendor, Version: version},
		})
	}
	return platforms, nil
}

type clPlatform struct {
	id   C.cl_platform_id
	info device.PlatformInfo
}

func (p *clPlatform) Info() device.PlatformInfo {
	return p.info
}

func (p *clPlatform) Devices() ([]device.Device, error) {
	var count C.cl_uint
	status := C.clGetDeviceIDs(p.id, C.CL_DEVICE_TYPE_ALL, 0, nil, &count)
	if status == C.CL_DEVICE_NOT_FOUND || (status == C.CL_SUCCESS && count == 0) {
		return nil, nil
	}
	if status != C.CL_SUCCESS {
		return nil, statusError("clGetDeviceIDs(count)", status)
	}

	ids := make([]C.cl_device_id, int(count))
	if status := C.clGetDeviceIDs(p.id, C.CL_DEVICE_TYPE_ALL, count, &ids[0], nil); status != C.CL_SUCCESS {
		return nil, statusError("clGetDeviceIDs(list)", status)
	}

	devices := make([]device.Device, 0, int(count))
	for _, id := range ids {
		info, err := buildDeviceInfo(id)
		if err != nil {
			return nil, err
		}
		devices = append(devices, &clDevice{id: id, info: info})
	}
	return devices, nil
}

type clDevice struct {
	id   C.cl_device_id
	info device.DeviceInfo
}

func (d *clDevice) Info() device.DeviceInfo {
	return d.info
}

func (d *clDevice) Dialect() device.Dialect {
	return device.DialectOpenCL
}

func (d *clDevice) CreateContext() (device.Context, error) {
	var status C.cl_int
	ctx := C.clCreateContext(nil, 1, &d.id, nil, nil, &status)
	if status != C.CL_SUCCESS {
		return nil, fmt.Errorf("%w: %v", device.ErrContext, statusError("clCreateContext", status))
	}
	return &clContext{ctx: ctx, dev: d.id}, nil
}

type clContext struct {
	ctx C.cl_context
	dev C.cl_device_id
}

func (c *clContext) CreateQueue() (device.Queue, error) {
	var status C.cl_int
	queue := C.cuboidbench_create_queue(c.ctx, c.dev, &status)
	if status != C.CL_SUCCESS {
		return nil, fmt.Errorf("%w: %v", device.ErrQueue, statusError("clCreateCommandQueue", status))
	}
	return &clQueue{q: queue}, nil
}

func (c *clContext) CreateProgram(source string) (device.Program, error) {
	src := C.CString(source)
	defer C.free(unsafe.Pointer(src))

	var status C.cl_int
	prog := C.clCreateProgramWithSource(c.ctx, 1, &src, nil, &status)
	if status != C.CL_SUCCESS {
		return nil, statusError("clCreateProgramWithSource", status)
	}
	return &clProgram{prog: prog, dev: c.dev}, nil
}

func (c *clContext) CreateBuffer(size int64, access device.Access) (device.Buffer, error) {
	flags := C.cl_mem_flags(C.CL_MEM_READ_ONLY)
	if access == device.WriteOnly {
		flags = C.CL_MEM_WRITE_ONLY
	}

	var status C.cl_int
	mem := C.clCreateBuffer(c.ctx, flags, C.size_t(size), nil, &status)
	if status != C.CL_SUCCESS {
		return nil, fmt.Errorf("%w: %v", device.ErrAllocation, statusError("clCreateBuffer", status))
	}
	return &clBuffer{mem: mem, size: size}, nil
}

func (c *clContext) Release() {
	if c.ctx != nil {
		C.clReleaseContext(c.ctx)
		c.ctx = nil
	}
}

type clProgram struct {
	prog  C.cl_program
	dev   C.cl_device_id
	built bool
}

func (p *clProgram) Build() error {
	status := C.clBuildProgram(p.prog, 1, &p.dev, nil, nil, nil)
	if status != C.CL_SUCCESS {
		return &device.CompileError{
			Status: clErrorString(status),
			Log:    device.TruncateLog(p.buildLog()),
		}
	}
	p.built = true
	return nil
}

func (p *clProgram) buildLog() string {
	var size C.size_t
	if status := C.clGetProgramBuildInfo(p.prog, p.dev, C.CL_PROGRAM_BUILD_LOG, 0, nil, &size); status != C.CL_SUCCESS {
		return ""
	}
	if size == 0 {
		return ""
	}
	buf := make([]byte, int(size))
	if status := C.clGetProgramBuildInfo(p.prog, p.dev, C.CL_PROGRAM_BUILD_LOG, size, unsafe.Pointer(&buf[0]), nil); status != C.CL_SUCCESS {
		return ""
	}
	return trimNull(buf)
}

func (p *clProgram) Kernel(entry string) (device.Kernel, error) {
	if !p.built {
		return nil, fmt.Errorf("opencl: kernel requested before successful build")
	}

	name := C.CString(entry)
	defer C.free(unsafe.Pointer(name))

	var status C.cl_int
	kernel := C.clCreateKernel(p.prog, name, &status)
	if status == C.CL_INVALID_KERNEL_NAME {
		return nil, fmt.Errorf("%w: %q", device.ErrEntryPointNotFound, entry)
	}
	if status != C.CL_SUCCESS {
		return nil, statusError("clCreateKernel", status)
	}
	return &clKernel{k: kernel}, nil
}

func (p *clProgram) Release() {
	if p.prog != nil {
		C.clReleaseProgram(p.prog)
		p.prog = nil
	}
}

type clKernel struct {
	k C.cl_kernel
}

func (k *clKernel) SetArg(index int, buf device.Buffer) error {
	cb, ok := buf.(*clBuffer)
	if !ok {
		return fmt.Errorf("%w: buffer was not created by this backend", device.ErrArgBind)
	}
	status := C.clSetKernelArg(k.k, C.cl_uint(index), C.size_t(unsafe.Sizeof(cb.mem)), unsafe.Pointer(&cb.mem))
	if status != C.CL_SUCCESS {
		return fmt.Errorf("%w: %v", device.ErrArgBind, statusError(fmt.Sprintf("clSetKernelArg(%d)", index), status))
	}
	return nil
}

func (k *clKernel) Release() {
	if k.k != nil {
		C.clReleaseKernel(k.k)
		k.k = nil
	}
}

type clBuffer struct {
	mem  C.cl_mem
	size int64
}

func (b *clBuffer) Size() int64 {
	return b.size
}

func (b *clBuffer) Release() {
	if b.mem != nil {
		C.clReleaseMemObject(b.mem)
		b.mem = nil
	}
}

type clQueue struct {
	q C.cl_command_queue
}

func (q *clQueue) Write(buf device.Buffer, data []int32) error {
	cb, ok := buf.(*clBuffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer", device.ErrTransfer)
	}
	bytes := int64(len(data)) * elementSize
	if bytes != cb.size {
		return fmt.Errorf("%w: host array is %d bytes, buffer holds %d", device.ErrTransfer, bytes, cb.size)
	}
	status := C.clEnqueueWriteBuffer(q.q, cb.mem, C.CL_TRUE, 0, C.size_t(bytes), unsafe.Pointer(&data[0]), 0, nil, nil)
	if status != C.CL_SUCCESS {
		return fmt.Errorf("%w: %v", device.ErrTransfer, statusError("clEnqueueWriteBuffer", status))
	}
	return nil
}

func (q *clQueue) Read(buf device.Buffer, data []int32) error {
	cb, ok := buf.(*clBuffer)
	if !ok {
		return fmt.Errorf("%w: foreign buffer", device.ErrReadback)
	}
	bytes := int64(len(data)) * elementSize
	if bytes != cb.size {
		return fmt.Errorf("%w: host array is %d bytes, buffer holds %d", device.ErrReadback, bytes, cb.size)
	}
	status := C.clEnqueueReadBuffer(q.q, cb.mem, C.CL_TRUE, 0, C.size_t(bytes), unsafe.Pointer(&data[0]), 0, nil, nil)
	if status != C.CL_SUCCESS {
		return fmt.Errorf("%w: %v", device.ErrReadback, statusError("clEnqueueReadBuffer", status))
	}
	return nil
}

func (q *clQueue) Launch(k device.Kernel, global, local int) error {
	ck, ok := k.(*clKernel)
	if !ok {
		return fmt.Errorf("%w: foreign kernel", device.ErrLaunch)
	}

	g := C.size_t(global)
	var l *C.size_t
	if local > 0 {
		lv := C.size_t(local)
		l = &lv
	}
	status := C.clEnqueueNDRangeKernel(q.q, ck.k, 1, nil, &g, l, 0, nil, nil)
	if status != C.CL_SUCCESS {
		return fmt.Errorf("%w: %v", device.ErrLaunch, statusError("clEnqueueNDRangeKernel", status))
	}
	return nil
}

func (q *clQueue) Finish() error {
	if status := C.clFinish(q.q); status != C.CL_SUCCESS {
		return fmt.Errorf("%w: %v", device.ErrWait, statusError("clFinish", status))
	}
	return nil
}

func (q *clQueue) Release() {
	if q.q != nil {
		C.clReleaseCommandQueue(q.q)
		q.q = nil
	}
}

func buildDeviceInfo(id C.cl_device_id) (device.DeviceInfo, error) {
	name, err := getDeviceString(id, C.CL_DEVICE_NAME)
	if err != nil {
		return device.DeviceInfo{}, err
	}
	vendor, err := getDeviceString(id, C.CL_DEVICE_VENDOR)
	if err != nil {
		return device.DeviceInfo{}, err
	}
	version, err := getDeviceString(id, C.CL_DEVICE_VERSION)
	if err != nil {
		return device.DeviceInfo{}, err
	}

	var rawType C.cl_device_type
	if status := C.clGetDeviceInfo(id, C.CL_DEVICE_TYPE, C.size_t(unsafe.Sizeof(rawType)), unsafe.Pointer(&rawType), nil); status != C.CL_SUCCESS {
		return device.DeviceInfo{}, statusError("clGetDeviceInfo(type)", status)
	}

	var computeUnits C.cl_uint
	if status := C.clGetDeviceInfo(id, C.CL_DEVICE_MAX_COMPUTE_UNITS, C.size_t(unsafe.Sizeof(computeUnits)), unsafe.Pointer(&computeUnits), nil); status != C.CL_SUCCESS {
		return device.DeviceInfo{}, statusError("clGetDeviceInfo(computeUnits)", status)
	}

	return device.DeviceInfo{
		Name:            name,
		Vendor:          vendor,
		Version:         version,
		Type:            mapDeviceType(rawType),
		MaxComputeUnits: uint32(computeUnits),
	}, nil
}

func getPlatformString(id C.cl_platform_id, param C.cl_platform_info) (string, error) {
	var size C.size_t
	if status := C.clGetPlatformInfo(id, param, 0, nil, &size); status != C.CL_SUCCESS {
		return "", statusError("clGetPlatformInfo(size)", status)
	}
	if size == 0 {
		return "", nil
	}
	buf := make([]byte, int(size))
	if status := C.clGetPlatformInfo(id, param, size, unsafe.Pointer(&buf[0]), nil); status != C.CL_SUCCESS {
		return "", statusError("clGetPlatformInfo(value)", status)
	}
	return trimNull(buf), nil
}

func getDeviceString(id C.cl_device_id, param C.cl_device_info) (string, error) {
	var size C.size_t
	if status := C.clGetDeviceInfo(id, param, 0, nil, &size); status != C.CL_SUCCESS {
		return "", statusError("clGetDeviceInfo(size)", status)
	}
	if size == 0 {
		return "", nil
	}
	buf := make([]byte, int(size))
	if status := C.clGetDeviceInfo(id, param, size, unsafe.Pointer(&buf[0]), nil); status != C.CL_SUCCESS {
		return "", statusError("clGetDeviceInfo(value)", status)
	}
	return trimNull(buf), nil
}

func trimNull(buf []byte) string {
	if len(buf) == 0 {
		return ""
	}
	if buf[len(buf)-1] == 0 {
		buf = buf[:len(buf)-1]
	}
	return string(buf)
}

func mapDeviceType(dt C.cl_device_type) device.DeviceType {
	switch {
	case dt&C.CL_DEVICE_TYPE_GPU != 0:
		return device.DeviceTypeGPU
	case dt&C.CL_DEVICE_TYPE_CPU != 0:
		return device.DeviceTypeCPU
	case dt&C.CL_DEVICE_TYPE_ACCELERATOR != 0:
		return device.DeviceTypeAccelerator
	default:
		return device.DeviceTypeUnknown
	}
}

func clErrorString(status C.cl_int) string {
	return C.GoString(C.cuboidbench_cl_error_string(status))
}

func statusError(prefix string, status C.cl_int) error {
	return fmt.Errorf("%s: %s (%d)", prefix, clErrorString(status), int(status))
}
