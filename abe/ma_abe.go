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

// MAABE is a decentralized multi-authority ciphertext-policy ABE
// scheme in the manner of Lewko and Waters: "Decentralizing
// Attribute-Based Encryption". Independent authorities each control a
// disjoint set of attributes and issue keys for them; no central
// authority exists. Users are tied together across authorities by a
// global identifier hashed to the curve.
type MAABE struct {
	P  *big.Int
	g1 *bn256.G1
	g2 *bn256.G2
}

// NewMAABE configures a new multi-authority ABE scheme.
func NewMAABE() *MAABE {
	return &MAABE{
		P:  bn256.Order,
		g1: new(bn256.G1).ScalarBaseMult(big.NewInt(1)),
		g2: new(bn256.G2).ScalarBaseMult(big.NewInt(1)),
	}
}

// MAABEPubKey is the public key of one authority, covering the
// attributes it controls.
type MAABEPubKey struct {
	Attribs    []int
	EggToAlpha map[int]*bn256.GT
	GToY       map[int]*bn256.G2
}

// MAABESecKey is the secret key of one authority.
type MAABESecKey struct {
	Attribs []int
	Alpha   map[int]*big.Int
	Y       map[int]*big.Int
}

// MAABEAuth is an authority in the multi-authority scheme.
type MAABEAuth struct {
	ID string
	Pk *MAABEPubKey
	Sk *MAABESecKey
}

// NewMAABEAuth configures a new authority controlling the given
// attributes.
func (a *MAABE) NewMAABEAuth(id string, attribs []int) (*MAABEAuth, error) {
	if len(attribs) == 0 {
		return nil, fmt.Errorf("empty set of authority attributes")
	}
	if len(id) == 0 {
		return nil, fmt.Errorf("empty id string")
	}

	sampler := sample.NewUniform(a.P)
	alphaVec, err := data.NewRandomVector(len(attribs), sampler)
	if err != nil {
		return nil, err
	}
	yVec, err := data.NewRandomVector(len(attribs), sampler)
	if err != nil {
		return nil, err
	}

	alpha := make(map[int]*big.Int, len(attribs))
	y := make(map[int]*big.Int, len(attribs))
	eggToAlpha := make(map[int]*bn256.GT, len(attribs))
	gToY := make(map[int]*bn256.G2, len(attribs))
	egg := bn256.Pair(a.g1, a.g2)
	for i, at := range attribs {
		alpha[at] = alphaVec[i]
		y[at] = yVec[i]
		eggToAlpha[at] = new(bn256.GT).ScalarMult(egg, alphaVec[i])
		gToY[at] = new(bn256.G2).ScalarMult(a.g2, yVec[i])
	}

	return &MAABEAuth{
		ID: id,
		Pk: &MAABEPubKey{Attribs: attribs, EggToAlpha: eggToAlpha, GToY: gToY},
		Sk: &MAABESecKey{Attribs: attribs, Alpha: alpha, Y: y},
	}, nil
}

// MAABECipher is a ciphertext of the multi-authority scheme; it
// carries the policy it was encrypted under.
type MAABECipher struct {
	C0  *bn256.GT
	C1x map[int]*bn256.GT
	C2x map[int]*bn256.G2
	C3x map[int]*bn256.G2
	Msp *MSP
}

// Encrypt encrypts a GT element msg under the policy given by the MSP,
// using the public keys of the authorities controlling the policy's
// attributes. Security holds only when the map msp.RowToAttrib is
// injective, which is checked.
func (a *MAABE) Encrypt(msg *bn256.GT, msp *MSP, pks []*MAABEPubKey) (*MAABECipher, error) {
	if msp.Mat.Rows() == 0 || msp.Mat.Cols() == 0 {
		return nil, fmt.Errorf("empty msp matrix")
	}

	seen := make(map[int]bool)
	for _, at := range msp.RowToAttrib {
		if seen[at] {
			return nil, fmt.Errorf("some attributes correspond to multiple rows of the MSP struct, the scheme is not secure")
		}
		seen[at] = true
	}

	sampler := sample.NewUniform(a.P)
	rows, cols := msp.Mat.Rows(), msp.Mat.Cols()

	// shares of the secret s and of zero across the policy rows
	v, err := data.NewRandomVector(cols, sampler)
	if err != nil {
		return nil, err
	}
	s := v[0]
	lambdaVec, err := msp.Mat.MulVec(v)
	if err != nil {
		return nil, err
	}

	w, err := data.NewRandomVector(cols, sampler)
	if err != nil {
		return nil, err
	}
	w[0] = big.NewInt(0)
	omegaVec, err := msp.Mat.MulVec(w)
	if err != nil {
		return nil, err
	}

	rVec, err := data.NewRandomVector(rows, sampler)
	if err != nil {
		return nil, err
	}

	egg := bn256.Pair(a.g1, a.g2)
	c0 := new(bn256.GT).Add(msg, new(bn256.GT).ScalarMult(egg, s))
	c1 := make(map[int]*bn256.GT, rows)
	c2 := make(map[int]*bn256.G2, rows)
	c3 := make(map[int]*bn256.G2, rows)

	for i, at := range msp.RowToAttrib {
		var pk *MAABEPubKey
		for _, cand := range pks {
			if cand.EggToAlpha[at] != nil {
				pk = cand
				break
			}
		}
		if pk == nil {
			return nil, fmt.Errorf("attribute not found in any pubkey")
		}

		eggLambda := scalarMultGTSigned(egg, lambdaVec[i])
		gOmega := scalarMultG2Signed(a.g2, omegaVec[i])

		c1[at] = new(bn256.GT).Add(eggLambda, new(bn256.GT).ScalarMult(pk.EggToAlpha[at], rVec[i]))
		c2[at] = new(bn256.G2).ScalarMult(a.g2, rVec[i])
		c3[at] = new(bn256.G2).Add(new(bn256.G2).ScalarMult(pk.GToY[at], rVec[i]), gOmega)
	}

	return &MAABECipher{C0: c0, C1x: c1, C2x: c2, C3x: c3, Msp: msp}, nil
}

// scalarMultGTSigned computes x * e for a possibly negative x.
func scalarMultGTSigned(e *bn256.GT, x *big.Int) *bn256.GT {
	if x.Sign() < 0 {
		return new(bn256.GT).ScalarMult(new(bn256.GT).Neg(e), new(big.Int).Abs(x))
	}

	return new(bn256.GT).ScalarMult(e, x)
}

// scalarMultG2Signed computes x * e for a possibly negative x.
func scalarMultG2Signed(e *bn256.G2, x *big.Int) *bn256.G2 {
	if x.Sign() < 0 {
		return new(bn256.G2).ScalarMult(new(bn256.G2).Neg(e), new(big.Int).Abs(x))
	}

	return new(bn256.G2).ScalarMult(e, x)
}

// MAABEKey is a key for a single attribute issued by its authority to
// the user with the given global identifier.
type MAABEKey struct {
	Gid    string
	Attrib int
	Key    *bn256.G1
}

// GenerateAttribKey issues a key for one of the authority's attributes
// to the user identified by gid.
func (a *MAABE) GenerateAttribKey(gid string, attrib int, sk *MAABESecKey) (*MAABEKey, error) {
	if len(gid) == 0 {
		return nil, fmt.Errorf("GID cannot be empty")
	}
	if sk.Alpha[attrib] == nil {
		return nil, fmt.Errorf("attribute not found in secret key")
	}

	hash, err := bn256.HashG1(gid)
	if err != nil {
		return nil, err
	}

	k := new(bn256.G1).Add(
		new(bn256.G1).ScalarMult(a.g1, sk.Alpha[attrib]),
		new(bn256.G1).ScalarMult(hash, sk.Y[attrib]))

	return &MAABEKey{Gid: gid, Attrib: attrib, Key: k}, nil
}

// Decrypt recovers the encrypted GT element from a ciphertext and a
// set of attribute keys sharing one global identifier. It succeeds iff
// the keys' attributes satisfy the ciphertext's policy.
func (a *MAABE) Decrypt(ct *MAABECipher, ks []*MAABEKey) (*bn256.GT, error) {
	if len(ks) == 0 {
		return nil, fmt.Errorf("empty set of attribute keys")
	}
	gid := ks[0].Gid
	for _, k := range ks {
		if k.Gid != gid {
			return nil, fmt.Errorf("not all GIDs are the same")
		}
	}

	hash, err := bn256.HashG1(gid)
	if err != nil {
		return nil, err
	}

	aToK := make(map[int]*MAABEKey, len(ks))
	for _, k := range ks {
		aToK[k.Attrib] = k
	}

	goodRows := make([]data.Vector, 0)
	goodAttribs := make([]int, 0)
	for i, at := range ct.Msp.RowToAttrib {
		if aToK[at] != nil {
			goodRows = append(goodRows, ct.Msp.Mat[i])
			goodAttribs = append(goodAttribs, at)
		}
	}
	goodMat, err := data.NewMatrix(goodRows)
	if err != nil {
		return nil, err
	}
	if goodMat.Rows() == 0 {
		return nil, fmt.Errorf("provided keys are not sufficient for decryption")
	}

	// coefficients c with sum_x c_x * M_x = (1, 0, ..., 0)
	target := data.NewConstantVector(goodMat.Cols(), big.NewInt(0))
	target[0] = big.NewInt(1)
	c, err := gaussianElimination(goodMat.Transpose(), target, a.P)
	if err != nil {
		return nil, fmt.Errorf("provided keys are not sufficient for decryption")
	}

	eggs := new(bn256.GT).ScalarBaseMult(big.NewInt(0))
	for i, at := range goodAttribs {
		if ct.C1x[at] == nil || ct.C2x[at] == nil || ct.C3x[at] == nil {
			return nil, fmt.Errorf("attribute %d not in ciphertext dicts", at)
		}

		// e(g1, g2)^lambda_x blinded by the key and GID hash
		eggLambda := new(bn256.GT).Add(ct.C1x[at], bn256.Pair(hash, ct.C3x[at]))
		den := bn256.Pair(aToK[at].Key, ct.C2x[at])
		eggLambda.Add(eggLambda, den.Neg(den))

		eggs.Add(eggs, scalarMultGTSigned(eggLambda, c[i]))
	}

	return new(bn256.GT).Add(ct.C0, new(bn256.GT).Neg(eggs)), nil
}
