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

package fullysec

import (
	"fmt"
	"math/big"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/internal"
	"github.com/arx-crypto/arxfe/internal/dlog"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/pkg/errors"
)

// DamgardMulti is the multi-input extension of the Damgard scheme,
// following Abdalla, Catalano, Fiore, Gay and Ursu: "Multi-Input
// Functional Encryption for Inner Products: Function-Hiding
// Realizations and Constructions without Pairings". A central
// authority provisions each of the clients with a Damgard key pair
// and a one-time pad; the functional key for a matrix Y with rows y_i
// decrypts the sum over clients of <x_i, y_i>.
type DamgardMulti struct {
	NumClients int
	// Bound keeps the original coordinate bound; the embedded scheme's
	// bound is widened to the group order to admit padded inputs
	Bound *big.Int
	*Damgard
}

// DamgardMultiClient is a single encryptor of the multi-input scheme.
type DamgardMultiClient struct {
	Bound *big.Int
	*Damgard
}

// NewDamgardMulti configures a multi-input Damgard scheme for the
// given number of clients; the remaining arguments are those of
// NewDamgard. It returns an error when the group could not be
// generated or when 2 * l * numClients * bound^2 exceeds the subgroup
// order.
func NewDamgardMulti(numClients, l, modulusLength int, bound *big.Int) (*DamgardMulti, error) {
	damgard, err := NewDamgard(l, modulusLength, bound)
	if err != nil {
		return nil, err
	}

	prod := new(big.Int).Mul(big.NewInt(int64(2*l*numClients)), new(big.Int).Mul(bound, bound))
	if prod.Cmp(damgard.Params.Q) > 0 {
		return nil, fmt.Errorf("2 * l * numClients * bound^2 should be smaller than group order")
	}

	// padded plaintexts range over the whole group
	damgard.Params.Bound = damgard.Params.Q

	return &DamgardMulti{
		NumClients: numClients,
		Bound:      bound,
		Damgard:    damgard,
	}, nil
}

// NewDamgardMultiFromParams reconstructs a multi-input scheme from the
// parameters of an existing instance.
func NewDamgardMultiFromParams(numClients int, bound *big.Int, params *DamgardParams) *DamgardMulti {
	return &DamgardMulti{
		NumClients: numClients,
		Bound:      bound,
		Damgard:    &Damgard{params},
	}
}

// NewDamgardMultiClientFromParams returns an encryptor for one client
// of a multi-input scheme with the given parameters.
func NewDamgardMultiClientFromParams(bound *big.Int, params *DamgardParams) *DamgardMultiClient {
	return &DamgardMultiClient{
		Bound:   bound,
		Damgard: &Damgard{params},
	}
}

// DamgardMultiSecKeys bundles the per-client master keys and one-time
// pads of the multi-input scheme.
type DamgardMultiSecKeys struct {
	Msk []*DamgardSecKey
	Mpk data.Matrix
	Otp data.Matrix
}

// GenerateMasterKeys generates Damgard master keys and a one-time pad
// for every client.
func (dm *DamgardMulti) GenerateMasterKeys() (*DamgardMultiSecKeys, error) {
	msk := make([]*DamgardSecKey, dm.NumClients)
	mpk := make([]data.Vector, dm.NumClients)
	otp := make([]data.Vector, dm.NumClients)

	for i := 0; i < dm.NumClients; i++ {
		clientMsk, clientMpk, err := dm.Damgard.GenerateMasterKeys()
		if err != nil {
			return nil, errors.Wrap(err, "error in master key generation")
		}
		msk[i] = clientMsk
		mpk[i] = clientMpk

		otp[i], err = data.NewRandomVector(dm.Params.L, sample.NewUniform(dm.Params.Q))
		if err != nil {
			return nil, errors.Wrap(err, "error in one-time pad generation")
		}
	}

	return &DamgardMultiSecKeys{
		Msk: msk,
		Mpk: data.Matrix(mpk),
		Otp: data.Matrix(otp),
	}, nil
}

// Encrypt encrypts the client's vector x blinded by its one-time pad.
func (e *DamgardMultiClient) Encrypt(x, pubKey, otp data.Vector) (data.Vector, error) {
	if err := x.CheckBound(e.Bound); err != nil {
		return nil, err
	}

	padded := x.Add(otp).Mod(e.Params.Q)

	return e.Damgard.Encrypt(padded, pubKey)
}

// DamgardMultiDerivedKey is the functional key of the multi-input
// scheme: per-client Damgard keys and the scalar Z = sum_i <otp_i, y_i>
// compensating the pads.
type DamgardMultiDerivedKey struct {
	Keys []*DamgardDerivedKey
	Z    *big.Int
}

// DeriveKey derives the functional key for the matrix y whose i-th row
// applies to client i.
func (dm *DamgardMulti) DeriveKey(secKey *DamgardMultiSecKeys, y data.Matrix) (*DamgardMultiDerivedKey, error) {
	if err := y.CheckBound(dm.Bound); err != nil {
		return nil, err
	}
	if !y.CheckDims(dm.NumClients, dm.Params.L) {
		return nil, internal.ErrMalformedInput
	}

	z, err := secKey.Otp.Dot(y)
	if err != nil {
		return nil, err
	}
	z.Mod(z, dm.Params.Q)

	keys := make([]*DamgardDerivedKey, dm.NumClients)
	for i := 0; i < dm.NumClients; i++ {
		keys[i], err = dm.Damgard.DeriveKey(secKey.Msk[i], y[i])
		if err != nil {
			return nil, err
		}
	}

	return &DamgardMultiDerivedKey{Keys: keys, Z: z}, nil
}

// Decrypt recovers the sum of per-client inner products sum_i <x_i, y_i>
// from the clients' ciphertexts. The per-client decryption residues
// are aggregated in the group, the pad contribution g^Z is divided
// out, and a single discrete log search decodes the sum.
func (dm *DamgardMulti) Decrypt(cipher []data.Vector, key *DamgardMultiDerivedKey, y data.Matrix) (*big.Int, error) {
	if err := y.CheckBound(dm.Bound); err != nil {
		return nil, err
	}
	if len(cipher) != dm.NumClients || len(key.Keys) != dm.NumClients {
		return nil, internal.ErrMalformedCipher
	}

	r := big.NewInt(1)
	for k := 0; k < dm.NumClients; k++ {
		num := big.NewInt(1)
		for i, ct := range cipher[k][2:] {
			num.Mul(num, internal.ModExp(ct, y[k][i], dm.Params.P))
			num.Mod(num, dm.Params.P)
		}

		denom := new(big.Int).Exp(cipher[k][0], key.Keys[k].Key1, dm.Params.P)
		denom.Mul(denom, new(big.Int).Exp(cipher[k][1], key.Keys[k].Key2, dm.Params.P))
		denom.Mod(denom, dm.Params.P)
		denom.ModInverse(denom, dm.Params.P)

		r.Mul(r, num)
		r.Mul(r, denom)
		r.Mod(r, dm.Params.P)
	}

	zExp := new(big.Int).Exp(dm.Params.G, key.Z, dm.Params.P)
	r.Mul(r, zExp.ModInverse(zExp, dm.Params.P))
	r.Mod(r, dm.Params.P)

	bound := new(big.Int).Mul(dm.Bound, dm.Bound)
	bound.Mul(bound, big.NewInt(int64(dm.Params.L*dm.NumClients)))

	calc, err := dlog.NewCalc().InZp(dm.Params.P, dm.Params.Q)
	if err != nil {
		return nil, err
	}

	return calc.WithNeg().WithBound(bound).BabyStepGiantStep(r, dm.Params.G)
}
