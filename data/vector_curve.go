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

package data

import (
	"math/big"

	"github.com/fentec-project/bn256"
)

// VectorG1 is a vector of BN256 G1 group elements.
type VectorG1 []*bn256.G1

// Add returns the element-wise sum of v and other (the element-wise
// product in multiplicative notation).
func (v VectorG1) Add(other VectorG1) VectorG1 {
	sum := make(VectorG1, len(v))
	for i := range v {
		sum[i] = new(bn256.G1).Add(v[i], other[i])
	}

	return sum
}

// Neg returns the element-wise inverse of v.
func (v VectorG1) Neg() VectorG1 {
	neg := make(VectorG1, len(v))
	for i := range v {
		neg[i] = new(bn256.G1).Neg(v[i])
	}

	return neg
}

// MulScalar returns the vector (x * v[i])_i.
func (v VectorG1) MulScalar(x *big.Int) VectorG1 {
	prod := make(VectorG1, len(v))
	for i := range v {
		prod[i] = new(bn256.G1).ScalarMult(v[i], x)
	}

	return prod
}

// Copy returns an independent copy of v.
func (v VectorG1) Copy() VectorG1 {
	cp := make(VectorG1, len(v))
	for i := range v {
		cp[i] = new(bn256.G1).Set(v[i])
	}

	return cp
}

// VectorG2 is a vector of BN256 G2 group elements.
type VectorG2 []*bn256.G2

// Add returns the element-wise sum of v and other (the element-wise
// product in multiplicative notation).
func (v VectorG2) Add(other VectorG2) VectorG2 {
	sum := make(VectorG2, len(v))
	for i := range v {
		sum[i] = new(bn256.G2).Add(v[i], other[i])
	}

	return sum
}

// Neg returns the element-wise inverse of v.
func (v VectorG2) Neg() VectorG2 {
	neg := make(VectorG2, len(v))
	for i := range v {
		neg[i] = new(bn256.G2).Neg(v[i])
	}

	return neg
}

// MulScalar returns the vector (x * v[i])_i.
func (v VectorG2) MulScalar(x *big.Int) VectorG2 {
	prod := make(VectorG2, len(v))
	for i := range v {
		prod[i] = new(bn256.G2).ScalarMult(v[i], x)
	}

	return prod
}

// Copy returns an independent copy of v.
func (v VectorG2) Copy() VectorG2 {
	cp := make(VectorG2, len(v))
	for i := range v {
		cp[i] = new(bn256.G2).Set(v[i])
	}

	return cp
}

// VectorGT is a vector of BN256 GT group elements.
type VectorGT []*bn256.GT

// Dot pairs v element-wise with a vector of integers, i.e. it returns
// the product of v[i]^x[i] in GT.
func (v VectorGT) Dot(x Vector) *bn256.GT {
	res := new(bn256.GT).ScalarBaseMult(big.NewInt(0))
	for i := range v {
		xi := new(big.Int).Set(x[i])
		e := new(bn256.GT).Set(v[i])
		if xi.Sign() < 0 {
			xi.Neg(xi)
			e.Neg(e)
		}
		res.Add(res, new(bn256.GT).ScalarMult(e, xi))
	}

	return res
}

// PairVectors pairs two vectors element-wise and returns the product
// of the pairings, i.e. the GT element prod_i e(v1[i], v2[i]).
func PairVectors(v1 VectorG1, v2 VectorG2) *bn256.GT {
	res := new(bn256.GT).ScalarBaseMult(big.NewInt(0))
	for i := range v1 {
		res.Add(res, bn256.Pair(v1[i], v2[i]))
	}

	return res
}
