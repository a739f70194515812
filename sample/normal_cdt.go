/*
 * Copyright (c) 2018 XLAB d.o.o
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sample

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
)

// cdtTable is the fixed cumulative distribution table of the
// half-Gaussian with sigma = sqrt(1 / 2 ln 2), each entry split into
// two 63-bit limbs.
var cdtTable = [][2]uint64{
	{2200310400551559144, 3327841033070651387},
	{7912151619254726620, 380075531178589176},
	{5167367257772081627, 11604843442081400},
	{5081592746475748971, 90134450315532},
	{6522074513864805092, 175786317361},
	{2579734681240182346, 85801740},
	{8175784047440310133, 10472},
	{2947787991558061753, 0},
	{22489665999543, 0},
}

// cdtLen bounds the sampled values.
var cdtLen = len(cdtTable)

var cdtLowMask = uint64(0x7fffffffffffffff)

// SigmaCDT is sqrt(1 / (2 ln 2)), the standard deviation realized by
// NormalCDT.
var SigmaCDT, _ = new(big.Float).SetString("0.84932180028801904272150283410")

// NormalCDT samples the discrete half-Gaussian over non-negative
// integers with sigma = sqrt(1 / 2 ln 2), i.e. x is output with
// probability proportional to exp(-x^2 / 2 sigma^2) = 2^(-x^2). The lookup walks
// the whole fixed table with masked arithmetic so the running time
// does not depend on the output, following "FACCT: FAst, Compact, and
// Constant-Time Discrete Gaussian Sampler over Integers" by Zhao,
// Steinfeld and Sakzad (https://eprint.iacr.org/2018/1234.pdf), which
// bounds the relative error of the procedure by 2^-46.
type NormalCDT struct {
	*normal
}

// NewNormalCDT returns a constant-time half-Gaussian sampler.
func NewNormalCDT() *NormalCDT {
	return &NormalCDT{}
}

// Sample returns a non-negative discrete Gaussian value.
func (c *NormalCDT) Sample() (*big.Int, error) {
	randBytes := make([]byte, 16)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, err
	}
	r1 := binary.LittleEndian.Uint64(randBytes[0:8]) & cdtLowMask
	r2 := binary.LittleEndian.Uint64(randBytes[8:16]) & cdtLowMask

	x := uint64(0)
	for i := 0; i < cdtLen; i++ {
		x += (((r1 - cdtTable[i][0]) & ((uint64(1) << 63) ^ ((r2 - cdtTable[i][1]) | (cdtTable[i][1] - r2)))) | (r2 - cdtTable[i][1])) >> 63
	}

	return big.NewInt(int64(x)), nil
}
