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

// Package data provides vectors and matrices of arbitrary precision
// integers together with their counterparts over the BN256 pairing
// groups. All operations return fresh values and never mutate their
// receivers.
package data

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/arx-crypto/arxfe/sample"
	"github.com/fentec-project/bn256"
	"golang.org/x/crypto/salsa20"
)

// Vector is a dense vector of *big.Int coordinates.
type Vector []*big.Int

// NewVector wraps a slice of coordinates into a Vector.
func NewVector(coordinates []*big.Int) Vector {
	return Vector(coordinates)
}

// NewRandomVector returns a vector of length l whose coordinates are
// drawn independently from the given sampler.
func NewRandomVector(l int, sampler sample.Sampler) (Vector, error) {
	v := make(Vector, l)
	for i := range v {
		c, err := sampler.Sample()
		if err != nil {
			return nil, err
		}
		v[i] = c
	}

	return v, nil
}

// NewRandomDetVector returns a vector of length l with coordinates
// pseudo-randomly chosen from [0, max) by a Salsa20 keystream expanded
// from key. Two calls with the same key, length and bound produce the
// same vector; the decentralized schemes rely on this to expand a
// shared secret into a common pad without communication.
func NewRandomDetVector(l int, max *big.Int, key *[32]byte) (Vector, error) {
	if max.Cmp(big.NewInt(2)) < 0 {
		return nil, fmt.Errorf("upper bound on samples should be at least 2")
	}

	maxBits := new(big.Int).Sub(max, big.NewInt(1)).BitLen()
	maxBytes := (maxBits + 7) / 8
	shift := uint(8*maxBytes - maxBits)
	nonce := make([]byte, 8)

	v := make(Vector, l)
	filled := 0
	// expand the keystream in growing chunks until rejection
	// sampling has accepted a value for every coordinate
	for chunk := 3; filled < l; chunk++ {
		stream := make([]byte, chunk*l*maxBytes)
		salsa20.XORKeyStream(stream, make([]byte, len(stream)), nonce, key)

		for off := 0; off+maxBytes <= len(stream) && filled < l; off += maxBytes {
			stream[off] >>= shift
			c := new(big.Int).SetBytes(stream[off : off+maxBytes])
			if c.Cmp(max) < 0 {
				v[filled] = c
				filled++
			}
		}
	}

	return v, nil
}

// NewConstantVector returns a vector of length l with every coordinate
// set to an independent copy of c.
func NewConstantVector(l int, c *big.Int) Vector {
	v := make(Vector, l)
	for i := range v {
		v[i] = new(big.Int).Set(c)
	}

	return v
}

// Copy returns an independent copy of v.
func (v Vector) Copy() Vector {
	return v.Apply(func(c *big.Int) *big.Int {
		return new(big.Int).Set(c)
	})
}

// Apply maps f over the coordinates of v and collects the results in a
// new vector.
func (v Vector) Apply(f func(*big.Int) *big.Int) Vector {
	res := make(Vector, len(v))
	for i, c := range v {
		res[i] = f(c)
	}

	return res
}

// Add returns the coordinate-wise sum of v and other.
func (v Vector) Add(other Vector) Vector {
	sum := make(Vector, len(v))
	for i, c := range v {
		sum[i] = new(big.Int).Add(c, other[i])
	}

	return sum
}

// Sub returns the coordinate-wise difference of v and other.
func (v Vector) Sub(other Vector) Vector {
	diff := make(Vector, len(v))
	for i, c := range v {
		diff[i] = new(big.Int).Sub(c, other[i])
	}

	return diff
}

// Neg returns the vector with all coordinates negated.
func (v Vector) Neg() Vector {
	return v.Apply(func(c *big.Int) *big.Int {
		return new(big.Int).Neg(c)
	})
}

// MulScalar returns x * v.
func (v Vector) MulScalar(x *big.Int) Vector {
	return v.Apply(func(c *big.Int) *big.Int {
		return new(big.Int).Mul(x, c)
	})
}

// Mod reduces every coordinate of v modulo modulo.
func (v Vector) Mod(modulo *big.Int) Vector {
	return v.Apply(func(c *big.Int) *big.Int {
		return new(big.Int).Mod(c, modulo)
	})
}

// CheckBound verifies that the absolute value of every coordinate is
// strictly smaller than bound, returning an error otherwise.
func (v Vector) CheckBound(bound *big.Int) error {
	abs := new(big.Int)
	for _, c := range v {
		if abs.Abs(c).Cmp(bound) >= 0 {
			return fmt.Errorf("all coordinates of a vector should be smaller than bound")
		}
	}

	return nil
}

// Dot returns the inner product of v and other over the integers. An
// error is returned when the lengths differ.
func (v Vector) Dot(other Vector) (*big.Int, error) {
	if len(v) != len(other) {
		return nil, fmt.Errorf("vectors should be of same length")
	}

	prod := new(big.Int)
	tmp := new(big.Int)
	for i, c := range v {
		prod.Add(prod, tmp.Mul(c, other[i]))
	}

	return prod, nil
}

// MulAsPolyInRing multiplies v and other as coefficient vectors of
// polynomials in the ring Z[x]/(x^n + 1), n being the common length.
// Coordinate i holds the coefficient of x^i. The reduction x^n = -1 is
// applied so the product again has degree < n.
func (v Vector) MulAsPolyInRing(other Vector) (Vector, error) {
	if len(v) != len(other) {
		return nil, fmt.Errorf("vectors must have the same length")
	}
	n := len(v)

	res := make(Vector, n)
	tmp := new(big.Int)
	for i := 0; i < n; i++ {
		res[i] = new(big.Int)
		for j := 0; j <= i; j++ {
			res[i].Add(res[i], tmp.Mul(v[i-j], other[j]))
		}
		// terms of degree >= n wrap around negated
		for j := i + 1; j < n; j++ {
			res[i].Sub(res[i], tmp.Mul(v[n+i-j], other[j]))
		}
	}

	return res, nil
}

// Tensor returns the tensor product of v and other, the vector of all
// products v[i] * other[j] ordered with i outermost.
func (v Vector) Tensor(other Vector) Vector {
	prod := make(Vector, 0, len(v)*len(other))
	for _, vi := range v {
		for _, oj := range other {
			prod = append(prod, new(big.Int).Mul(vi, oj))
		}
	}

	return prod
}

// MulG1 lifts v to G1, i.e. computes (v[i] * g1)_i for the canonical
// generator g1.
func (v Vector) MulG1() VectorG1 {
	lift := make(VectorG1, len(v))
	for i, c := range v {
		lift[i] = new(bn256.G1).ScalarBaseMult(new(big.Int).Abs(c))
		if c.Sign() < 0 {
			lift[i].Neg(lift[i])
		}
	}

	return lift
}

// MulVecG1 computes the coordinate-wise products (v[i] * g1[i])_i.
// Negative coordinates are handled by negating the group element.
func (v Vector) MulVecG1(g1 VectorG1) VectorG1 {
	prod := make(VectorG1, len(v))
	for i, c := range v {
		ci := new(big.Int).Set(c)
		gi := new(bn256.G1).Set(g1[i])
		if ci.Sign() < 0 {
			ci.Neg(ci)
			gi.Neg(gi)
		}
		prod[i] = new(bn256.G1).ScalarMult(gi, ci)
	}

	return prod
}

// MulG2 lifts v to G2, i.e. computes (v[i] * g2)_i for the canonical
// generator g2.
func (v Vector) MulG2() VectorG2 {
	lift := make(VectorG2, len(v))
	for i, c := range v {
		lift[i] = new(bn256.G2).ScalarBaseMult(new(big.Int).Abs(c))
		if c.Sign() < 0 {
			lift[i].Neg(lift[i])
		}
	}

	return lift
}

// MulVecG2 computes the coordinate-wise products (v[i] * g2[i])_i.
// Negative coordinates are handled by negating the group element.
func (v Vector) MulVecG2(g2 VectorG2) VectorG2 {
	prod := make(VectorG2, len(v))
	for i, c := range v {
		ci := new(big.Int).Set(c)
		gi := new(bn256.G2).Set(g2[i])
		if ci.Sign() < 0 {
			ci.Neg(ci)
			gi.Neg(gi)
		}
		prod[i] = new(bn256.G2).ScalarMult(gi, ci)
	}

	return prod
}

// String implements fmt.Stringer.
func (v Vector) String() string {
	parts := make([]string, len(v))
	for i, c := range v {
		parts[i] = c.String()
	}

	return strings.Join(parts, " ")
}
