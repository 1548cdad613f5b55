// Package loader reads and writes model files.
//
// A model file is a JSON array with one record per layer:
//
//	[{"kW":3,"kH":3,"nInputPlane":3,"nOutputPlane":32,
//	  "bias":[...],"weight":[[[[...]]]]}, ...]
//
// where weight is indexed [output][input][ky][kx]. Files may be compressed
// with zstd; Decode detects this from the frame magic.
//
// Example:
//
//	model, err := loader.Load("scale2.0x_model.json")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(model)
package loader
