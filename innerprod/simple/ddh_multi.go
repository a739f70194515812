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

package simple

import (
	"math/big"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/internal"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/pkg/errors"
)

// DDHMulti is the multi-input extension of the DDH inner product
// scheme, following Abdalla, Catalano, Fiore, Gay and Ursu:
// "Multi-Input Functional Encryption for Inner Products:
// Function-Hiding Realizations and Constructions without Pairings".
// Each of the Slots encryptors encrypts its own vector; the functional
// key for a matrix Y decrypts the sum over slots of per-slot inner
// products.
type DDHMulti struct {
	Slots int
	*DDH
}

// DDHMultiClient is the encryptor's view of the multi-input scheme: it
// holds only the shared parameters needed to encrypt a single slot.
type DDHMultiClient struct {
	*DDH
}

// NewDDHMulti configures a multi-input DDH scheme with the given
// number of slots; the remaining arguments are those of NewDDH.
func NewDDHMulti(slots, l, modulusLength int, bound *big.Int) (*DDHMulti, error) {
	ddh, err := NewDDH(l, modulusLength, bound)
	if err != nil {
		return nil, err
	}

	return &DDHMulti{
		Slots: slots,
		DDH:   ddh,
	}, nil
}

// NewDDHMultiFromParams reconstructs a multi-input scheme from the
// parameters of an existing instance.
func NewDDHMultiFromParams(slots int, params *DDHParams) *DDHMulti {
	return &DDHMulti{
		Slots: slots,
		DDH:   &DDH{params},
	}
}

// NewDDHMultiClient returns an encryptor for one slot of a multi-input
// scheme with the given parameters.
func NewDDHMultiClient(params *DDHParams) *DDHMultiClient {
	return &DDHMultiClient{
		DDH: &DDH{params},
	}
}

// DDHMultiSecKey is the master secret key of the multi-input scheme:
// per-slot DDH secret keys and the one-time pad matrix.
type DDHMultiSecKey struct {
	Msk    data.Matrix
	OtpKey data.Matrix
}

// GenerateMasterKeys generates per-slot DDH master keys together with
// the one-time pad matrix blinding the plaintexts.
func (dm *DDHMulti) GenerateMasterKeys() (data.Matrix, *DDHMultiSecKey, error) {
	mskVecs := make([]data.Vector, dm.Slots)
	mpkVecs := make([]data.Vector, dm.Slots)
	otpVecs := make([]data.Vector, dm.Slots)

	for i := 0; i < dm.Slots; i++ {
		msk, mpk, err := dm.DDH.GenerateMasterKeys()
		if err != nil {
			return nil, nil, errors.Wrap(err, "error in master key generation")
		}
		mskVecs[i] = msk
		mpkVecs[i] = mpk

		otpVecs[i], err = data.NewRandomVector(dm.Params.L, sample.NewUniform(dm.Params.Bound))
		if err != nil {
			return nil, nil, errors.Wrap(err, "error in one-time pad generation")
		}
	}

	pubKey, err := data.NewMatrix(mpkVecs)
	if err != nil {
		return nil, nil, err
	}
	secKey, err := data.NewMatrix(mskVecs)
	if err != nil {
		return nil, nil, err
	}
	otp, err := data.NewMatrix(otpVecs)
	if err != nil {
		return nil, nil, err
	}

	return pubKey, &DDHMultiSecKey{Msk: secKey, OtpKey: otp}, nil
}

// Encrypt encrypts the slot vector x after blinding it with the slot's
// one-time pad.
func (e *DDHMultiClient) Encrypt(x, pubKey, otp data.Vector) (data.Vector, error) {
	if err := x.CheckBound(e.Params.Bound); err != nil {
		return nil, err
	}

	padded := x.Add(otp).Mod(e.Params.Bound)

	return e.DDH.Encrypt(padded, pubKey)
}

// DDHMultiDerivedKey is the functional key of the multi-input scheme:
// per-slot DDH keys and the scalar compensating the one-time pads.
type DDHMultiDerivedKey struct {
	Keys   data.Vector
	OTPKey *big.Int
}

// DeriveKey derives the functional key for the matrix y whose i-th row
// applies to slot i.
func (dm *DDHMulti) DeriveKey(secKey *DDHMultiSecKey, y data.Matrix) (*DDHMultiDerivedKey, error) {
	if err := y.CheckBound(dm.Params.Bound); err != nil {
		return nil, err
	}
	if !y.CheckDims(dm.Slots, dm.Params.L) {
		return nil, internal.ErrMalformedInput
	}

	z, err := secKey.OtpKey.Dot(y)
	if err != nil {
		return nil, err
	}
	z.Mod(z, dm.Params.Bound)

	keys := make(data.Vector, dm.Slots)
	for i := 0; i < dm.Slots; i++ {
		keys[i], err = dm.DDH.DeriveKey(secKey.Msk[i], y[i])
		if err != nil {
			return nil, err
		}
	}

	return &DDHMultiDerivedKey{Keys: keys, OTPKey: z}, nil
}

// Decrypt sums the per-slot inner products recovered from the slot
// ciphertexts and removes the one-time pad contribution, returning the
// value sum_i <x_i, y_i> reduced mod Bound.
func (dm *DDHMulti) Decrypt(cipher []data.Vector, key *DDHMultiDerivedKey, y data.Matrix) (*big.Int, error) {
	if err := y.CheckBound(dm.Params.Bound); err != nil {
		return nil, err
	}
	if len(cipher) != dm.Slots || len(key.Keys) != dm.Slots {
		return nil, internal.ErrMalformedCipher
	}

	sum := new(big.Int)
	for i := 0; i < dm.Slots; i++ {
		c, err := dm.DDH.Decrypt(cipher[i], key.Keys[i], y[i])
		if err != nil {
			return nil, err
		}
		sum.Add(sum, c)
	}

	res := sum.Sub(sum, key.OTPKey)

	return res.Mod(res, dm.Params.Bound), nil
}
