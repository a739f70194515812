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

// Package simple contains inner product schemes secure against
// selective chosen-plaintext adversaries.
package simple

import (
	"fmt"
	"math/big"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/internal"
	"github.com/arx-crypto/arxfe/internal/dlog"
	"github.com/arx-crypto/arxfe/internal/keygen"
	emmy "github.com/xlab-si/emmy/crypto/common"
)

// DDHParams holds configuration parameters for a DDH scheme instance:
// the length L of input vectors, the bound on their coordinates, and
// the group description (modulus P, generator G of a subgroup of
// order Q).
type DDHParams struct {
	L     int
	Bound *big.Int
	G     *big.Int
	P     *big.Int
	Q     *big.Int
}

// DDH is an inner product scheme secure under the DDH assumption,
// following the construction of Abdalla, Bourse, De Caro and
// Pointcheval: "Simple Functional Encryption Schemes for Inner
// Products".
type DDH struct {
	Params *DDHParams
}

// NewDDH configures a new DDH scheme for vectors of length l with
// coordinates bounded by bound, working in a group modulo a safe prime
// of modulusLength bits. It returns an error when the group could not
// be generated or when l * bound^2 does not fit below the modulus.
func NewDDH(l, modulusLength int, bound *big.Int) (*DDH, error) {
	key, err := keygen.NewElGamal(modulusLength)
	if err != nil {
		return nil, err
	}

	prodBound := new(big.Int).Mul(big.NewInt(int64(l)), new(big.Int).Mul(bound, bound))
	if prodBound.Cmp(key.P) >= 0 {
		return nil, fmt.Errorf("l * bound^2 should be smaller than group order")
	}

	return &DDH{
		Params: &DDHParams{
			L:     l,
			Bound: bound,
			G:     key.G,
			P:     key.P,
			Q:     key.Q,
		},
	}, nil
}

// NewDDHFromParams reconstructs a DDH scheme from the parameters of an
// existing instance.
func NewDDHFromParams(params *DDHParams) *DDH {
	return &DDH{Params: params}
}

// GenerateMasterKeys generates a master secret key s and the matching
// master public key (g^s_i)_i.
func (d *DDH) GenerateMasterKeys() (data.Vector, data.Vector, error) {
	msk := make(data.Vector, d.Params.L)
	mpk := make(data.Vector, d.Params.L)

	for i := 0; i < d.Params.L; i++ {
		s, err := emmy.GetRandomIntFromRange(big.NewInt(2), d.Params.Q)
		if err != nil {
			return nil, nil, err
		}
		msk[i] = s
		mpk[i] = internal.ModExp(d.Params.G, s, d.Params.P)
	}

	return msk, mpk, nil
}

// DeriveKey derives the functional key for inner products with y,
// which is the value <msk, y> mod Q.
func (d *DDH) DeriveKey(masterSecKey, y data.Vector) (*big.Int, error) {
	if err := y.CheckBound(d.Params.Bound); err != nil {
		return nil, err
	}

	key, err := masterSecKey.Dot(y)
	if err != nil {
		return nil, err
	}

	return key.Mod(key, d.Params.Q), nil
}

// Encrypt encrypts x under the master public key. The ciphertext is
// (g^r, (mpk_i^r * g^x_i)_i).
func (d *DDH) Encrypt(x, masterPubKey data.Vector) (data.Vector, error) {
	if err := x.CheckBound(d.Params.Bound); err != nil {
		return nil, err
	}
	if len(x) != len(masterPubKey) {
		return nil, internal.ErrMalformedPubKey
	}

	r, err := emmy.GetRandomIntFromRange(big.NewInt(1), d.Params.P)
	if err != nil {
		return nil, err
	}

	cipher := make(data.Vector, len(x)+1)
	cipher[0] = new(big.Int).Exp(d.Params.G, r, d.Params.P)

	for i, xi := range x {
		t := new(big.Int).Exp(masterPubKey[i], r, d.Params.P)
		t.Mul(t, internal.ModExp(d.Params.G, xi, d.Params.P))
		cipher[i+1] = t.Mod(t, d.Params.P)
	}

	return cipher, nil
}

// Decrypt recovers the inner product <x, y> from a ciphertext of x and
// a functional key for y. The encoded value g^<x,y> is decoded by a
// baby-step giant-step search within the bound L * Bound^2, on both
// signs.
func (d *DDH) Decrypt(cipher data.Vector, key *big.Int, y data.Vector) (*big.Int, error) {
	if err := y.CheckBound(d.Params.Bound); err != nil {
		return nil, err
	}
	if len(cipher) != d.Params.L+1 {
		return nil, internal.ErrMalformedCipher
	}

	num := big.NewInt(1)
	for i, ct := range cipher[1:] {
		num.Mul(num, internal.ModExp(ct, y[i], d.Params.P))
		num.Mod(num, d.Params.P)
	}

	denom := internal.ModExp(cipher[0], key, d.Params.P)
	denom.ModInverse(denom, d.Params.P)
	r := new(big.Int).Mul(num, denom)
	r.Mod(r, d.Params.P)

	bound := new(big.Int).Mul(big.NewInt(int64(d.Params.L)),
		new(big.Int).Mul(d.Params.Bound, d.Params.Bound))

	calc, err := dlog.NewCalc().InZp(d.Params.P, d.Params.Q)
	if err != nil {
		return nil, err
	}

	return calc.WithNeg().WithBound(bound).BabyStepGiantStep(r, d.Params.G)
}
