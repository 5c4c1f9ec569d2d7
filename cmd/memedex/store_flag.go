package main

import (
	"fmt"

	"github.com/spf13/pflag"
)

type storeBackend string

func (b *storeBackend) Set(val string) error {
	for _, backend := range allStoreBackends {
		if val == string(backend) {
			*b = backend
			return nil
		}
	}
	return fmt.Errorf("invalid store backend: %s", val)
}

func (b storeBackend) String() string {
	return string(b)
}

func (b *storeBackend) Type() string {
	return "backend"
}

const (
	storeBackendMemory storeBackend = "memory"
	storeBackendBadger storeBackend = "badger"
	storeBackendMySQL  storeBackend = "mysql"
)

var (
	_                pflag.Value = (*storeBackend)(nil)
	allStoreBackends             = []storeBackend{storeBackendMemory, storeBackendBadger, storeBackendMySQL}
)
