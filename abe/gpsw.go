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

package abe

import (
	"fmt"
	"math/big"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/fentec-project/bn256"
)

// GPSW is a key-policy attribute based encryption scheme based on
// Goyal, Pandey, Sahai and Waters: "Attribute-Based Encryption for
// Fine-Grained Access Control of Encrypted Data", abbreviated GPSW
// after the authors. Ciphertexts are tied to attribute sets; keys are
// tied to a policy and decrypt exactly the ciphertexts whose
// attributes satisfy it. Encryption is public key.
type GPSW struct {
	Params *GPSWParams
}

// GPSWParams holds configuration parameters for a GPSW scheme
// instance: the size L of the attribute universe and the order P of
// the pairing groups.
type GPSWParams struct {
	L int
	P *big.Int
}

// NewGPSW configures a new GPSW scheme over an attribute universe of
// size l; attributes are the integers 0, ..., l-1.
func NewGPSW(l int) *GPSW {
	return &GPSW{Params: &GPSWParams{
		L: l,
		P: bn256.Order,
	}}
}

// GPSWPubKey is the public key of the GPSW scheme: per-attribute G2
// elements and the GT element blinding messages.
type GPSWPubKey struct {
	T data.VectorG2
	Y *bn256.GT
}

// GenerateMasterKeys generates the public key needed for encryption
// and the master secret vector from which policy keys derive.
func (a *GPSW) GenerateMasterKeys() (*GPSWPubKey, data.Vector, error) {
	sk, err := data.NewRandomVector(a.Params.L+1, sample.NewUniform(a.Params.P))
	if err != nil {
		return nil, nil, err
	}

	t := sk[:a.Params.L].MulG2()
	y := new(bn256.GT).ScalarBaseMult(sk[a.Params.L])

	return &GPSWPubKey{T: t, Y: y}, sk, nil
}

// GPSWCipher is a ciphertext of the GPSW scheme: the encrypted GT
// element blinded by Y^s, together with per-attribute components for
// the attribute set Gamma it was encrypted under.
type GPSWCipher struct {
	Gamma []int
	// AttribToI maps attributes of Gamma to positions in E
	AttribToI map[int]int
	E0        *bn256.GT
	E         data.VectorG2
}

// Encrypt encrypts a GT element msg under the attribute set gamma:
// with fresh randomness s the ciphertext is
// (msg * Y^s, (s * T_i)_{i in gamma}).
func (a *GPSW) Encrypt(msg *bn256.GT, gamma []int, pk *GPSWPubKey) (*GPSWCipher, error) {
	for _, attrib := range gamma {
		if attrib < 0 || attrib >= a.Params.L {
			return nil, fmt.Errorf("attributes out of the universe of the scheme")
		}
	}

	s, err := sample.NewUniform(a.Params.P).Sample()
	if err != nil {
		return nil, err
	}

	e0 := new(bn256.GT).Add(msg, new(bn256.GT).ScalarMult(pk.Y, s))

	e := make(data.VectorG2, len(gamma))
	attribToI := make(map[int]int, len(gamma))
	for i, attrib := range gamma {
		e[i] = new(bn256.G2).ScalarMult(pk.T[attrib], s)
		attribToI[attrib] = i
	}

	return &GPSWCipher{
		Gamma:     gamma,
		AttribToI: attribToI,
		E0:        e0,
		E:         e,
	}, nil
}

// GPSWKey is a policy key: the MSP matrix rows, one G1 key element per
// row, and the map from rows to attributes. The key decrypts a
// ciphertext iff the rows mapped to the ciphertext's attributes span
// the all-ones vector.
type GPSWKey struct {
	Mat         data.Matrix
	D           data.VectorG1
	RowToAttrib []int
}

// GeneratePolicyKey produces a key for the policy described by the
// MSP: the master secret sk[L] is shared across the MSP columns with a
// random vector u summing to it, and row i yields the key element
// g1^{<M_i, u> / t_rho(i)}. Row keys can later be delegated separately
// to holders of the corresponding attributes.
func (a *GPSW) GeneratePolicyKey(msp *MSP, sk data.Vector) (*GPSWKey, error) {
	if msp.Mat.Rows() == 0 || msp.Mat.Cols() == 0 {
		return nil, fmt.Errorf("empty msp matrix")
	}
	if len(sk) != a.Params.L+1 {
		return nil, fmt.Errorf("the secret key has wrong length")
	}

	u, err := getSum(sk[a.Params.L], a.Params.P, msp.Mat.Cols())
	if err != nil {
		return nil, err
	}

	d := make(data.VectorG1, msp.Mat.Rows())
	for i, row := range msp.Mat {
		attrib := msp.RowToAttrib[i]
		if attrib < 0 || attrib >= a.Params.L {
			return nil, fmt.Errorf("attributes of msp not in the universe of the scheme")
		}

		tInv := new(big.Int).ModInverse(sk[attrib], a.Params.P)
		rowDotU, err := row.Dot(u)
		if err != nil {
			return nil, err
		}
		pow := new(big.Int).Mul(tInv, rowDotU)
		pow.Mod(pow, a.Params.P)
		d[i] = new(bn256.G1).ScalarBaseMult(pow)
	}

	return &GPSWKey{
		Mat:         msp.Mat.Copy(),
		D:           d,
		RowToAttrib: append([]int{}, msp.RowToAttrib...),
	}, nil
}

// getSum returns a random d-dimensional vector over Z_p whose entries
// sum to y.
func getSum(y, p *big.Int, d int) (data.Vector, error) {
	v, err := data.NewRandomVector(d, sample.NewUniform(p))
	if err != nil {
		return nil, err
	}

	sum := new(big.Int)
	for _, c := range v[:d-1] {
		sum.Add(sum, c)
		sum.Mod(sum, p)
	}
	v[d-1] = sum.Sub(y, sum).Mod(sum, p)

	return v, nil
}

// DelegateKeys restricts a policy key to the rows whose attributes are
// listed in attribs, producing the key handed to the holder of exactly
// those attributes.
func (a *GPSW) DelegateKeys(key *GPSWKey, attribs []int) *GPSWKey {
	owned := make(map[int]bool, len(attribs))
	for _, attrib := range attribs {
		owned[attrib] = true
	}

	mat := make(data.Matrix, 0, len(key.Mat))
	d := make(data.VectorG1, 0, len(key.D))
	rowToAttrib := make([]int, 0, len(key.RowToAttrib))
	for i, attrib := range key.RowToAttrib {
		if owned[attrib] {
			mat = append(mat, key.Mat[i])
			d = append(d, key.D[i])
			rowToAttrib = append(rowToAttrib, attrib)
		}
	}

	return &GPSWKey{Mat: mat, D: d, RowToAttrib: rowToAttrib}
}

// Decrypt recovers the encrypted GT element from a ciphertext and a
// (possibly delegated) policy key. The rows of the key usable with the
// ciphertext's attribute set must span the all-ones vector; the
// reconstruction coefficients are found by Gaussian elimination and an
// error is returned when the key is insufficient.
func (a *GPSW) Decrypt(cipher *GPSWCipher, key *GPSWKey) (*bn256.GT, error) {
	inGamma := make(map[int]bool, len(cipher.Gamma))
	for _, attrib := range cipher.Gamma {
		inGamma[attrib] = true
	}

	mat := make(data.Matrix, 0, len(key.Mat))
	d := make(data.VectorG1, 0, len(key.D))
	rowToAttrib := make([]int, 0, len(key.RowToAttrib))
	for i, attrib := range key.RowToAttrib {
		if inGamma[attrib] {
			mat = append(mat, key.Mat[i])
			d = append(d, key.D[i])
			rowToAttrib = append(rowToAttrib, attrib)
		}
	}
	if len(mat) == 0 {
		return nil, fmt.Errorf("provided key is not sufficient for decryption")
	}

	ones := data.NewConstantVector(mat.Cols(), big.NewInt(1))
	alpha, err := gaussianElimination(mat.Transpose(), ones, a.Params.P)
	if err != nil {
		return nil, fmt.Errorf("provided key is not sufficient for decryption")
	}

	msg := new(bn256.GT).Set(cipher.E0)
	for i := range alpha {
		pair := bn256.Pair(d[i], cipher.E[cipher.AttribToI[rowToAttrib[i]]])
		pair.ScalarMult(pair, alpha[i])
		msg.Add(msg, pair.Neg(pair))
	}

	return msg, nil
}
