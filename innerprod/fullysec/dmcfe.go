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
	"crypto/sha256"
	"math/big"
	"strconv"

	"github.com/arx-crypto/arxfe/data"
	"github.com/arx-crypto/arxfe/internal/dlog"
	"github.com/arx-crypto/arxfe/sample"
	"github.com/fentec-project/bn256"
	"github.com/pkg/errors"
)

// DMCFEClient is one client of the decentralized multi-client scheme
// of Chotard, Dufour Sans, Gay, Phan and Pointcheval: "Decentralized
// Multi-Client Functional Encryption for Inner Product". There is no
// trusted authority: clients agree on pairwise shared secrets through
// a Diffie-Hellman exchange and expand them into zero-sum blinding
// shares, so that combining all key shares cancels the blinding.
// Client i encrypts the number x_i; the decryptor combines ciphertexts
// and key shares of all clients into <x, y> for a public y.
type DMCFEClient struct {
	Idx          int
	ClientSecKey *big.Int
	ClientPubKey *bn256.G1
	Share        data.Matrix
	S            data.Vector
}

// NewDMCFEClient returns a client with a fresh Diffie-Hellman key pair
// and secret encryption vector. Clients are assumed to be numbered
// 0, ..., n-1; idx is this client's position.
func NewDMCFEClient(idx int) (*DMCFEClient, error) {
	sampler := sample.NewUniform(bn256.Order)

	s, err := data.NewRandomVector(2, sampler)
	if err != nil {
		return nil, errors.Wrap(err, "could not generate random vector")
	}
	sec, err := sampler.Sample()
	if err != nil {
		return nil, errors.Wrap(err, "could not generate random value")
	}

	return &DMCFEClient{
		Idx:          idx,
		ClientSecKey: sec,
		ClientPubKey: new(bn256.G1).ScalarBaseMult(sec),
		S:            s,
	}, nil
}

// SetShare derives the client's blinding share from the public keys of
// all clients, pubKeys[k] belonging to client k. Each pair of clients
// expands its Diffie-Hellman secret into the same pseudorandom matrix,
// which enters the two shares with opposite signs; summed over all
// clients the shares therefore cancel.
func (c *DMCFEClient) SetShare(pubKeys []*bn256.G1) error {
	c.Share = data.NewConstantMatrix(2, 2, big.NewInt(0))

	for k := range pubKeys {
		if k == c.Idx {
			continue
		}

		sharedG1 := new(bn256.G1).ScalarMult(pubKeys[k], c.ClientSecKey)
		sharedKey := sha256.Sum256([]byte(sharedG1.String()))

		add, err := data.NewRandomDetMatrix(2, 2, bn256.Order, &sharedKey)
		if err != nil {
			return err
		}

		if k < c.Idx {
			c.Share, err = c.Share.Add(add)
			if err != nil {
				return err
			}
		} else {
			c.Share, err = c.Share.Sub(add)
			if err != nil {
				return err
			}
		}
		c.Share = c.Share.Mod(bn256.Order)
	}

	return nil
}

// Encrypt encrypts the client's number x under the given label as
// g1^x * prod_i H(i, label)^s_i.
func (c *DMCFEClient) Encrypt(x *big.Int, label string) (*bn256.G1, error) {
	cipher := new(bn256.G1).ScalarBaseMult(big.NewInt(0))
	for i := 0; i < 2; i++ {
		hs, err := bn256.HashG1(strconv.Itoa(i) + " " + label)
		if err != nil {
			return nil, err
		}
		cipher.Add(cipher, hs.ScalarMult(hs, c.S[i]))
	}

	pow := new(big.Int).Set(x)
	gx := new(bn256.G1).ScalarBaseMult(big.NewInt(1))
	if pow.Sign() < 0 {
		pow.Neg(pow)
		gx.Neg(gx)
	}
	cipher.Add(cipher, gx.ScalarMult(gx, pow))

	return cipher, nil
}

// DeriveKeyShare generates the client's share of the functional key
// for y; the decryptor needs the shares of all clients.
func (c *DMCFEClient) DeriveKeyShare(y data.Vector) (data.VectorG2, error) {
	hs := make([]*bn256.G2, 2)
	var err error
	for i := 0; i < 2; i++ {
		hs[i], err = bn256.HashG2(strconv.Itoa(i) + " " + y.String())
		if err != nil {
			return nil, err
		}
	}

	keyShare := data.VectorG2{
		new(bn256.G2).ScalarBaseMult(big.NewInt(0)),
		new(bn256.G2).ScalarBaseMult(big.NewInt(0)),
	}
	for k := 0; k < 2; k++ {
		for i := 0; i < 2; i++ {
			keyShare[k].Add(keyShare[k], new(bn256.G2).ScalarMult(hs[i], c.Share[k][i]))
		}

		pow := new(big.Int).Mul(y[c.Idx], c.S[k])
		pow.Mod(pow, bn256.Order)
		keyShare[k].Add(keyShare[k], new(bn256.G2).ScalarBaseMult(pow))
	}

	return keyShare, nil
}

// DMCFEDecrypt combines the ciphertexts and key shares of all clients
// into the inner product <x, y>, where each client encrypted its x_i
// under the given label. The solution is searched for in the interval
// (-bound, bound); a nil bound selects the calculator's maximum.
func DMCFEDecrypt(ciphers []*bn256.G1, keyShares []data.VectorG2, y data.Vector, label string,
	bound *big.Int) (*big.Int, error) {
	key1 := new(bn256.G2).ScalarBaseMult(big.NewInt(0))
	key2 := new(bn256.G2).ScalarBaseMult(big.NewInt(0))
	for i := range keyShares {
		key1.Add(key1, keyShares[i][0])
		key2.Add(key2, keyShares[i][1])
	}

	cSum := new(bn256.G1).ScalarBaseMult(big.NewInt(0))
	for i := range ciphers {
		cAdd := new(bn256.G1).Set(ciphers[i])
		pow := new(big.Int).Set(y[i])
		if pow.Sign() < 0 {
			cAdd.Neg(cAdd)
			pow.Neg(pow)
		}
		cSum.Add(cSum, cAdd.ScalarMult(cAdd, pow))
	}

	gen2 := new(bn256.G2).ScalarBaseMult(big.NewInt(1))
	s := bn256.Pair(cSum, gen2)

	for i := 0; i < 2; i++ {
		hs, err := bn256.HashG1(strconv.Itoa(i) + " " + label)
		if err != nil {
			return nil, err
		}
		key := key1
		if i == 1 {
			key = key2
		}
		t := bn256.Pair(hs, key)
		s.Add(s, t.Neg(t))
	}

	g := bn256.Pair(new(bn256.G1).ScalarBaseMult(big.NewInt(1)), gen2)

	return dlog.NewCalc().InBN256().WithNeg().WithBound(bound).BabyStepGiantStep(s, g)
}
