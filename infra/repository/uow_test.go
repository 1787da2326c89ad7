package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	infrarepo "github.com/minwoo-song/bankcore/infra/repository"
)

func TestUoW_AccessorsOutsideDo(t *testing.T) {
	uow := infrarepo.NewUoW(nil)

	_, err := uow.AccountRepository()
	assert.ErrorIs(t, err, infrarepo.ErrNoTransaction)

	_, err = uow.TransferRepository()
	assert.ErrorIs(t, err, infrarepo.ErrNoTransaction)
}
