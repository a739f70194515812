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
	"math/big"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/internal"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/pkg/errors"
)

// PaillierMulti is the multi-input extension of the Paillier scheme,
// following Abdalla, Catalano, Fiore, Gay and Ursu: "Multi-Input
// Functional Encryption for Inner Products: Function-Hiding
// Realizations and Constructions without Pairings". A central
// authority provisions each client with a Paillier key pair and a
// one-time pad; the functional key for a matrix Y with rows y_i
// decrypts the sum over clients of <x_i, y_i>.
type PaillierMulti struct {
	NumClients int
	// original coordinate bounds; the embedded scheme's bounds are
	// lifted since it processes padded inputs
	BoundX *big.Int
	BoundY *big.Int
	*Paillier
}

// PaillierMultiClient is a single encryptor of the multi-input scheme.
type PaillierMultiClient struct {
	BoundX *big.Int
	BoundY *big.Int
	*Paillier
}

// NewPaillierMulti configures a multi-input Paillier scheme for the
// given number of clients; the remaining arguments are those of
// NewPaillier. The plaintext bound passed to the underlying scheme is
// tripled to leave room for the one-time pads.
func NewPaillierMulti(numClients, l, lambda, bitLen int, boundX, boundY *big.Int) (*PaillierMulti, error) {
	innerBoundX := new(big.Int).Mul(boundX, big.NewInt(3))
	paillier, err := NewPaillier(l, lambda, bitLen, innerBoundX, boundY)
	if err != nil {
		return nil, err
	}

	// padded plaintexts may be arbitrarily large
	paillier.Params.BoundX = nil
	paillier.Params.BoundY = nil

	return &PaillierMulti{
		NumClients: numClients,
		BoundX:     boundX,
		BoundY:     boundY,
		Paillier:   paillier,
	}, nil
}

// NewPaillierMultiFromParams reconstructs a multi-input scheme from
// the parameters of an existing instance.
func NewPaillierMultiFromParams(numClients int, boundX, boundY *big.Int, params *PaillierParams) *PaillierMulti {
	return &PaillierMulti{
		NumClients: numClients,
		BoundX:     boundX,
		BoundY:     boundY,
		Paillier:   &Paillier{params},
	}
}

// NewPaillierMultiClientFromParams returns an encryptor for one client
// of a multi-input scheme with the given parameters.
func NewPaillierMultiClientFromParams(params *PaillierParams, boundX, boundY *big.Int) *PaillierMultiClient {
	return &PaillierMultiClient{
		BoundX:   boundX,
		BoundY:   boundY,
		Paillier: &Paillier{params},
	}
}

// PaillierMultiSecKeys bundles the per-client master keys and one-time
// pads of the multi-input scheme.
type PaillierMultiSecKeys struct {
	Msk data.Matrix
	Mpk data.Matrix
	Otp data.Matrix
}

// GenerateMasterKeys generates Paillier master keys and a one-time pad
// for every client.
func (dm *PaillierMulti) GenerateMasterKeys() (*PaillierMultiSecKeys, error) {
	msk := make([]data.Vector, dm.NumClients)
	mpk := make([]data.Vector, dm.NumClients)
	otp := make([]data.Vector, dm.NumClients)

	for i := 0; i < dm.NumClients; i++ {
		clientMsk, clientMpk, err := dm.Paillier.GenerateMasterKeys()
		if err != nil {
			return nil, errors.Wrap(err, "error in master key generation")
		}
		msk[i] = clientMsk
		mpk[i] = clientMpk

		otp[i], err = data.NewRandomVector(dm.Params.L, sample.NewUniform(dm.Params.NSquare))
		if err != nil {
			return nil, errors.Wrap(err, "error in one-time pad generation")
		}
	}

	return &PaillierMultiSecKeys{
		Msk: data.Matrix(msk),
		Mpk: data.Matrix(mpk),
		Otp: data.Matrix(otp),
	}, nil
}

// Encrypt encrypts the client's vector x blinded by its one-time pad.
func (e *PaillierMultiClient) Encrypt(x, pubKey, otp data.Vector) (data.Vector, error) {
	if e.BoundX != nil {
		if err := x.CheckBound(e.BoundX); err != nil {
			return nil, err
		}
	}

	padded := x.Add(otp).Mod(e.Params.NSquare)

	return e.Paillier.Encrypt(padded, pubKey)
}

// PaillierMultiDerivedKey is the functional key of the multi-input
// scheme: per-client Paillier keys and the scalar Z = sum_i <otp_i, y_i>
// compensating the pads.
type PaillierMultiDerivedKey struct {
	Keys []*big.Int
	Z    *big.Int
}

// DeriveKey derives the functional key for the matrix y whose i-th row
// applies to client i.
func (dm *PaillierMulti) DeriveKey(secKey *PaillierMultiSecKeys, y data.Matrix) (*PaillierMultiDerivedKey, error) {
	if dm.BoundY != nil {
		if err := y.CheckBound(dm.BoundY); err != nil {
			return nil, err
		}
	}
	if !y.CheckDims(dm.NumClients, dm.Params.L) {
		return nil, internal.ErrMalformedInput
	}

	z, err := secKey.Otp.Dot(y)
	if err != nil {
		return nil, err
	}
	z.Mod(z, dm.Params.NSquare)

	keys := make([]*big.Int, dm.NumClients)
	for i := 0; i < dm.NumClients; i++ {
		keys[i], err = dm.Paillier.DeriveKey(secKey.Msk[i], y[i])
		if err != nil {
			return nil, err
		}
	}

	return &PaillierMultiDerivedKey{Keys: keys, Z: z}, nil
}

// Decrypt recovers the sum of per-client inner products
// sum_i <x_i, y_i> from the clients' ciphertexts. The per-client
// residues 1 + t_k n are summed in Z_{n^2}, the pad contribution is
// removed via 1 - Z n, and the result is read off the n-digit.
func (dm *PaillierMulti) Decrypt(cipher []data.Vector, key *PaillierMultiDerivedKey, y data.Matrix) (*big.Int, error) {
	if dm.BoundY != nil {
		if err := y.CheckBound(dm.BoundY); err != nil {
			return nil, err
		}
	}
	if len(cipher) != dm.NumClients || len(key.Keys) != dm.NumClients {
		return nil, internal.ErrMalformedCipher
	}

	r := new(big.Int)
	for k := 0; k < dm.NumClients; k++ {
		cX := internal.ModExp(cipher[k][0], new(big.Int).Neg(key.Keys[k]), dm.Params.NSquare)
		for i, ct := range cipher[k][1:] {
			cX.Mul(cX, internal.ModExp(ct, y[k][i], dm.Params.NSquare))
			cX.Mod(cX, dm.Params.NSquare)
		}
		r.Add(r, cX)
		r.Mod(r, dm.Params.NSquare)
	}

	z := new(big.Int).Mul(dm.Params.N, key.Z)
	z.Sub(big.NewInt(1), z)
	r.Add(r, z.Mod(z, dm.Params.NSquare))
	r.Mod(r, dm.Params.NSquare)

	r.Sub(r, big.NewInt(1))
	r.Mod(r, dm.Params.NSquare)
	res := new(big.Int).Quo(r, dm.Params.N)

	nHalf := new(big.Int).Rsh(dm.Params.N, 1)
	if res.Cmp(nHalf) > 0 {
		res.Sub(res, dm.Params.N)
	}

	return res, nil
}
