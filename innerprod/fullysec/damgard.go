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

// Package fullysec contains inner product schemes secure against
// adaptive chosen-plaintext adversaries.
package fullysec

import (
	"fmt"
	"math/big"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/internal"
	"github.com/arx-crypto/arxfe/internal/dlog"
	"github.com/arx-crypto/arxfe/internal/keygen"
	emmy "github.com/xlab-si/emmy/crypto/common"
)

// DamgardParams holds configuration parameters for a Damgard scheme
// instance: the vector length L, the coordinate bound, and two
// independent generators G and H of the group modulo P with subgroup
// order Q.
type DamgardParams struct {
	L     int
	Bound *big.Int
	G     *big.Int
	H     *big.Int
	P     *big.Int
	Q     *big.Int
}

// Damgard is a public-key inner product scheme secure against
// adaptive adversaries under DDH, based on the DDH variant of Agrawal,
// Libert and Stehle: "Fully secure functional encryption for inner
// products, from standard assumptions". Compared to the simple DDH
// scheme the master key holds two secret vectors and the public key
// combines two generators.
type Damgard struct {
	Params *DamgardParams
}

// NewDamgard configures a new Damgard scheme for vectors of length l
// with coordinates bounded by bound, working in a group modulo a safe
// prime of modulusLength bits. It returns an error when the group
// could not be generated or when l * bound^2 does not fit below the
// modulus.
func NewDamgard(l, modulusLength int, bound *big.Int) (*Damgard, error) {
	key, err := keygen.NewElGamal(modulusLength)
	if err != nil {
		return nil, err
	}

	one := big.NewInt(1)
	two := big.NewInt(2)

	prod := new(big.Int).Mul(big.NewInt(int64(l)), new(big.Int).Mul(bound, bound))
	if prod.Cmp(key.P) >= 0 {
		return nil, fmt.Errorf("l * bound^2 should be smaller than group order")
	}

	pMinusOne := new(big.Int).Sub(key.P, one)

	// second generator h independent of g
	h := new(big.Int)
	for {
		r, err := emmy.GetRandomIntFromRange(one, key.P)
		if err != nil {
			return nil, err
		}
		h.Exp(key.G, r, key.P)

		// G generates the subgroup of prime order Q, so every h = G^r
		// other than 1 generates it as well
		if new(big.Int).Exp(h, two, key.P).Cmp(one) == 0 {
			continue
		}
		// avoid generators with known weaknesses
		if new(big.Int).Mod(pMinusOne, h).Sign() == 0 {
			continue
		}
		hInv := new(big.Int).ModInverse(h, key.P)
		if new(big.Int).Mod(pMinusOne, hInv).Sign() == 0 {
			continue
		}

		break
	}

	return &Damgard{
		Params: &DamgardParams{
			L:     l,
			Bound: bound,
			G:     key.G,
			H:     h,
			P:     key.P,
			Q:     key.Q,
		},
	}, nil
}

// NewDamgardFromParams reconstructs a Damgard scheme from the
// parameters of an existing instance.
func NewDamgardFromParams(params *DamgardParams) *Damgard {
	return &Damgard{Params: params}
}

// DamgardSecKey is the master secret key of the Damgard scheme, a pair
// of independent secret vectors.
type DamgardSecKey struct {
	S data.Vector
	T data.Vector
}

// GenerateMasterKeys generates the master secret key (s, t) and the
// master public key (g^s_i * h^t_i)_i.
func (d *Damgard) GenerateMasterKeys() (*DamgardSecKey, data.Vector, error) {
	mskS := make(data.Vector, d.Params.L)
	mskT := make(data.Vector, d.Params.L)
	mpk := make(data.Vector, d.Params.L)

	pMinusOne := new(big.Int).Sub(d.Params.P, big.NewInt(1))

	for i := 0; i < d.Params.L; i++ {
		s, err := emmy.GetRandomIntFromRange(big.NewInt(2), pMinusOne)
		if err != nil {
			return nil, nil, err
		}
		t, err := emmy.GetRandomIntFromRange(big.NewInt(2), pMinusOne)
		if err != nil {
			return nil, nil, err
		}
		mskS[i] = s
		mskT[i] = t

		y := new(big.Int).Exp(d.Params.G, s, d.Params.P)
		y.Mul(y, new(big.Int).Exp(d.Params.H, t, d.Params.P))
		mpk[i] = y.Mod(y, d.Params.P)
	}

	return &DamgardSecKey{S: mskS, T: mskT}, mpk, nil
}

// DamgardDerivedKey is the functional key of the Damgard scheme, the
// pair (<s, y>, <t, y>) mod (p-1).
type DamgardDerivedKey struct {
	Key1 *big.Int
	Key2 *big.Int
}

// DeriveKey derives the functional key for inner products with y.
func (d *Damgard) DeriveKey(masterSecKey *DamgardSecKey, y data.Vector) (*DamgardDerivedKey, error) {
	if err := y.CheckBound(d.Params.Bound); err != nil {
		return nil, err
	}

	key1, err := masterSecKey.S.Dot(y)
	if err != nil {
		return nil, err
	}
	key2, err := masterSecKey.T.Dot(y)
	if err != nil {
		return nil, err
	}

	pMinusOne := new(big.Int).Sub(d.Params.P, big.NewInt(1))

	return &DamgardDerivedKey{
		Key1: key1.Mod(key1, pMinusOne),
		Key2: key2.Mod(key2, pMinusOne),
	}, nil
}

// Encrypt encrypts x under the master public key. The ciphertext is
// (g^r, h^r, (mpk_i^r * g^x_i)_i).
func (d *Damgard) Encrypt(x, masterPubKey data.Vector) (data.Vector, error) {
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

	cipher := make(data.Vector, len(x)+2)
	cipher[0] = new(big.Int).Exp(d.Params.G, r, d.Params.P)
	cipher[1] = new(big.Int).Exp(d.Params.H, r, d.Params.P)

	for i, xi := range x {
		t := new(big.Int).Exp(masterPubKey[i], r, d.Params.P)
		t.Mul(t, internal.ModExp(d.Params.G, xi, d.Params.P))
		cipher[i+2] = t.Mod(t, d.Params.P)
	}

	return cipher, nil
}

// Decrypt recovers the inner product <x, y> from a ciphertext of x and
// a functional key for y, by a signed baby-step giant-step search
// within the bound L * Bound^2.
func (d *Damgard) Decrypt(cipher data.Vector, key *DamgardDerivedKey, y data.Vector) (*big.Int, error) {
	if err := y.CheckBound(d.Params.Bound); err != nil {
		return nil, err
	}
	if len(cipher) != d.Params.L+2 {
		return nil, internal.ErrMalformedCipher
	}

	num := big.NewInt(1)
	for i, ct := range cipher[2:] {
		num.Mul(num, internal.ModExp(ct, y[i], d.Params.P))
		num.Mod(num, d.Params.P)
	}

	denom := new(big.Int).Exp(cipher[0], key.Key1, d.Params.P)
	denom.Mul(denom, new(big.Int).Exp(cipher[1], key.Key2, d.Params.P))
	denom.Mod(denom, d.Params.P)
	denom.ModInverse(denom, d.Params.P)

	r := new(big.Int).Mul(num, denom)
	r.Mod(r, d.Params.P)

	order := new(big.Int).Sub(d.Params.P, big.NewInt(1))
	bound := new(big.Int).Mul(big.NewInt(int64(d.Params.L)),
		new(big.Int).Mul(d.Params.Bound, d.Params.Bound))

	calc, err := dlog.NewCalc().InZp(d.Params.P, order)
	if err != nil {
		return nil, err
	}

	return calc.WithNeg().WithBound(bound).BabyStepGiantStep(r, d.Params.G)
}
