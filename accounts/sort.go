// Copyright 2018 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package accounts

// AccountsByURL implements sort.Interface for []Account based on the URL field.
type AccountsByURL []Account

// Len returns the length of the AccountsByURL slice.
func (a AccountsByURL) Len() int { return len(a) }

// Swap swaps the elements at indices i and j in the AccountsByURL slice.
func (a AccountsByURL) Swap(i, j int) { a[i], a[j] = a[j], a[i] }

// Less compares the URL fields of the elements at indices i and j in the AccountsByURL slice.
// It returns true if the URL of the element at index i is lexicographically smaller than that at index j.
func (a AccountsByURL) Less(i, j int) bool { return a[i].URL.Cmp(a[j].URL) < 0 }

// WalletsByURL implements sort.Interface for []Wallet based on the URL field.
type WalletsByURL []Wallet

// Len returns the length of the WalletsByURL slice.
func (w WalletsByURL) Len() int { return len(w) }

// Swap swaps the elements at indices i and j in the WalletsByURL slice.
func (w WalletsByURL) Swap(i, j int) { w[i], w[j] = w[j], w[i] }

// Less compares the URL fields of the elements at indices i and j in the WalletsByURL slice.
// It returns true if the URL of the element at index i is lexicographically smaller than that at index j.
func (w WalletsByURL) Less(i, j int) bool { return w[i].URL().Cmp(w[j].URL()) < 0 }
