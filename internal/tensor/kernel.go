package tensor

// KernelSize is the spatial size of every convolution kernel.
const KernelSize = 3

// Kernel is a row-major 3x3 weight matrix: k[ky*3+kx].
type Kernel [KernelSize * KernelSize]float32

// IdentityKernel returns a kernel with 1 at the center and 0 elsewhere.
func IdentityKernel() Kernel {
	var k Kernel
	k[4] = 1
	return k
}

// At returns the weight at row ky, column kx.
func (k Kernel) At(ky, kx int) float32 {
	return k[ky*KernelSize+kx]
}

// Scale returns the kernel multiplied by c.
func (k Kernel) Scale(c float32) Kernel {
	for i := range k {
		k[i] *= c
	}
	return k
}
