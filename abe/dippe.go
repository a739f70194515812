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
	"strconv"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/fentec-project/bn256"
)

// DIPPE is a decentralized inner-product predicate encryption scheme
// introduced by Michalevsky and Joye: "Decentralized Policy-Hiding
// Attribute-Based Encryption with Receiver Privacy"
// (https://eprint.iacr.org/2018/753.pdf). Independent authorities
// publish public keys; a message is encrypted under a policy vector x
// and an attribute vector v decrypts iff <v, x> = 0 mod the group
// order. Helper constructions translate conjunction and exact
// threshold policies into such vector pairs.
type DIPPE struct {
	secLevel int
	G1ToA    data.MatrixG1
	G1ToUA   data.MatrixG1
	// order of the pairing groups
	P *big.Int
}

// DIPPESecKey is the secret key of one authority.
type DIPPESecKey struct {
	Sigma *big.Int
	W     data.Matrix
	Alpha data.Vector
}

// DIPPEPubKey is the public key of one authority.
type DIPPEPubKey struct {
	G1ToWtA   data.MatrixG1
	GToAlphaA data.VectorGT
	G2ToSigma *bn256.G2
}

// DIPPEAuth is an authority issuing key shares in the DIPPE scheme.
type DIPPEAuth struct {
	ID int
	Sk DIPPESecKey
	Pk DIPPEPubKey
}

// DIPPECipher is a ciphertext of the DIPPE scheme; it carries the
// policy vector it was encrypted under.
type DIPPECipher struct {
	C0     data.VectorG1
	C      data.MatrixG1
	CPrime *bn256.GT
	X      data.Vector
}

// NewDIPPE configures a new DIPPE scheme with the given security
// level, the k of the underlying k-Lin assumption.
func NewDIPPE(secLevel int) (*DIPPE, error) {
	sampler := sample.NewUniform(bn256.Order)

	A, err := data.NewRandomMatrix(secLevel+1, secLevel, sampler)
	if err != nil {
		return nil, err
	}
	U, err := data.NewRandomMatrix(secLevel+1, secLevel+1, sampler)
	if err != nil {
		return nil, err
	}
	UA, err := U.Mul(A)
	if err != nil {
		return nil, err
	}

	return &DIPPE{
		secLevel: secLevel,
		G1ToA:    A.MulG1(),
		G1ToUA:   UA.Mod(bn256.Order).MulG1(),
		P:        bn256.Order,
	}, nil
}

// NewDIPPEAuth configures a new authority able to produce decryption
// key shares. With n authorities each is assumed to have a distinct id
// from [0, n).
func (d *DIPPE) NewDIPPEAuth(id int) (*DIPPEAuth, error) {
	sampler := sample.NewUniform(bn256.Order)

	W, err := data.NewRandomMatrix(d.secLevel+1, d.secLevel+1, sampler)
	if err != nil {
		return nil, err
	}
	alpha, err := data.NewRandomVector(d.secLevel+1, sampler)
	if err != nil {
		return nil, err
	}
	sigma, err := sampler.Sample()
	if err != nil {
		return nil, err
	}

	g1ToWtA, err := W.Transpose().MatMulMatG1(d.G1ToA)
	if err != nil {
		return nil, err
	}

	g1ToAlphaA, err := data.Matrix{alpha}.MatMulMatG1(d.G1ToA)
	if err != nil {
		return nil, err
	}
	g2 := new(bn256.G2).ScalarBaseMult(big.NewInt(1))
	gtToAlphaA := make(data.VectorGT, d.secLevel)
	for i := range gtToAlphaA {
		gtToAlphaA[i] = bn256.Pair(g1ToAlphaA[0][i], g2)
	}

	return &DIPPEAuth{
		ID: id,
		Sk: DIPPESecKey{Sigma: sigma, W: W, Alpha: alpha},
		Pk: DIPPEPubKey{
			G1ToWtA:   g1ToWtA,
			GToAlphaA: gtToAlphaA,
			G2ToSigma: new(bn256.G2).ScalarMult(g2, sigma),
		},
	}, nil
}

// Encrypt encrypts a GT element msg under the policy vector x, the
// i-th coordinate of x belonging to the authority with id i whose
// public key is pubKeys[i].
func (d *DIPPE) Encrypt(msg *bn256.GT, x data.Vector, pubKeys []*DIPPEPubKey) (*DIPPECipher, error) {
	if len(x) != len(pubKeys) {
		return nil, fmt.Errorf("the policy vector does not match the number of authorities")
	}

	s, err := data.NewRandomVector(d.secLevel, sample.NewUniform(bn256.Order))
	if err != nil {
		return nil, err
	}

	c0 := d.G1ToA.MulVector(s)

	c := make(data.MatrixG1, len(x))
	for i := range x {
		// policy coordinates may be negative; reduce them so that the
		// scalar multiplication receives a non-negative scalar
		xi := new(big.Int).Mod(x[i], d.P)
		g1ToXiUA := d.G1ToUA.MulScalar(xi)
		c[i] = g1ToXiUA.Add(pubKeys[i].G1ToWtA).MulVector(s)
	}

	cPrime := new(bn256.GT).ScalarBaseMult(big.NewInt(0))
	for _, pk := range pubKeys {
		cPrime.Add(cPrime, pk.GToAlphaA.Dot(s))
	}
	cPrime.Add(cPrime, msg)

	return &DIPPECipher{C0: c0, C: c, CPrime: cPrime, X: x.Copy()}, nil
}

// DeriveKeyShare issues the authority's share of the decryption key
// for a user with attribute vector v and global identifier gid. The
// shares carry pairwise blinding terms derived from the authorities'
// Diffie-Hellman keys which cancel when all shares are combined.
func (a *DIPPEAuth) DeriveKeyShare(v data.Vector, pubKeys []*DIPPEPubKey, gid string) (data.VectorG2, error) {
	rows := a.Sk.W.Rows()

	g2ToMu := make(data.VectorG2, rows)
	for i := range g2ToMu {
		g2ToMu[i] = new(bn256.G2).ScalarBaseMult(big.NewInt(0))
	}

	for j := range pubKeys {
		if j == a.ID {
			continue
		}

		yToSigma := new(bn256.G2).ScalarMult(pubKeys[j].G2ToSigma, a.Sk.Sigma)
		for i := 0; i < rows; i++ {
			hashed, err := bn256.HashG2(strconv.Itoa(i) + yToSigma.String() + gid + v.String())
			if err != nil {
				return nil, err
			}
			if j > a.ID {
				hashed.Neg(hashed)
			}
			g2ToMu[i].Add(g2ToMu[i], hashed)
		}
	}

	g2ToH := make(data.VectorG2, rows)
	for j := range g2ToH {
		var err error
		g2ToH[j], err = bn256.HashG2(strconv.Itoa(j) + gid + v.String())
		if err != nil {
			return nil, err
		}
	}
	g2ToWH, err := a.Sk.W.MatMulVecG2(g2ToH)
	if err != nil {
		return nil, err
	}
	g2ToViWH := g2ToWH.MulScalar(v[a.ID]).Neg()

	return a.Sk.Alpha.MulG2().Add(g2ToViWH).Add(g2ToMu), nil
}

// Decrypt combines the authorities' key shares and recovers the
// encrypted GT element, provided <v, x> = 0 for the ciphertext's
// policy x; otherwise an error is returned.
func (d *DIPPE) Decrypt(cipher *DIPPECipher, keys []data.VectorG2, v data.Vector, gid string) (*bn256.GT, error) {
	prod, err := v.Dot(cipher.X)
	if err != nil {
		return nil, err
	}
	if new(big.Int).Mod(prod, d.P).Sign() != 0 {
		return nil, fmt.Errorf("insufficient keys")
	}

	gTToAlphaAS := new(bn256.GT).ScalarBaseMult(big.NewInt(0))

	ones := data.NewConstantMatrix(1, len(keys), big.NewInt(1))
	keySum, err := ones.MatMulMatG2(data.MatrixG2(keys))
	if err != nil {
		return nil, err
	}
	for i, e := range cipher.C0 {
		gTToAlphaAS.Add(gTToAlphaAS, bn256.Pair(e, keySum[0][i]))
	}

	cSum, err := data.Matrix{v}.MatMulMatG1(cipher.C)
	if err != nil {
		return nil, err
	}
	for j := range cSum[0] {
		hashed, err := bn256.HashG2(strconv.Itoa(j) + gid + v.String())
		if err != nil {
			return nil, err
		}
		gTToAlphaAS.Add(gTToAlphaAS, bn256.Pair(cSum[0][j], hashed))
	}

	return new(bn256.GT).Add(cipher.CPrime, gTToAlphaAS.Neg(gTToAlphaAS)), nil
}

// ExactThresholdPolicyVecInit builds a DIPPE policy vector realizing
// an exact threshold policy: a user decrypts iff it owns exactly
// threshold of the listed attributes.
func (d DIPPE) ExactThresholdPolicyVecInit(attrib []int, threshold, numAttrib int) (data.Vector, error) {
	policyVec := data.NewConstantVector(numAttrib+1, big.NewInt(0))
	for _, e := range attrib {
		if e > numAttrib {
			return nil, fmt.Errorf("attributes out of range")
		}
		policyVec[e].SetInt64(1)
	}
	policyVec[numAttrib].SetInt64(int64(-threshold))

	return policyVec, nil
}

// ConjunctionPolicyVecInit builds a DIPPE policy vector realizing a
// conjunction policy: a user decrypts iff it owns all the listed
// attributes.
func (d DIPPE) ConjunctionPolicyVecInit(attrib []int, numAttrib int) (data.Vector, error) {
	policyVec := data.NewConstantVector(numAttrib+1, big.NewInt(0))
	sampler := sample.NewUniform(bn256.Order)

	last := new(big.Int)
	for _, e := range attrib {
		if e > numAttrib {
			return nil, fmt.Errorf("attributes out of range")
		}
		r, err := sampler.Sample()
		if err != nil {
			return nil, err
		}
		policyVec[e].Set(r)
		last.Sub(last, r)
	}
	policyVec[numAttrib].Set(last)

	return policyVec, nil
}

// AttributeVecInit builds the attribute vector describing a user's
// attributes, matching the policy vectors produced by the threshold
// and conjunction helpers.
func (d DIPPE) AttributeVecInit(attrib []int, numAttrib int) (data.Vector, error) {
	attribVec := data.NewConstantVector(numAttrib+1, big.NewInt(0))
	for _, e := range attrib {
		if e > numAttrib {
			return nil, fmt.Errorf("attributes out of range")
		}
		attribVec[e].SetInt64(1)
	}
	attribVec[numAttrib].SetInt64(1)

	return attribVec, nil
}
