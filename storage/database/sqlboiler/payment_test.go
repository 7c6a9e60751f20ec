package boiledrepos_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/edvise/core"
	"github.com/trezcool/edvise/core/payment"
	boiledrepos "github.com/trezcool/edvise/storage/database/sqlboiler"
	"github.com/trezcool/edvise/testutil"
)

func TestPaymentProofRepository_CreateProof(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	tnt := testutil.CreateTenant(t, db, "acme")
	repo := boiledrepos.NewPaymentProofRepository(db)

	proof := func(id, subjectID, fingerprint string) payment.Proof {
		return payment.Proof{
			ID:          id,
			TenantID:    tnt.ID,
			UserID:      "u1",
			SubjectType: payment.SubjectReservation,
			SubjectID:   subjectID,
			ImageURL:    "http://imagehost.test/" + id + ".gif",
			ContentType: "image/gif",
			SizeBytes:   6,
			Fingerprint: fingerprint,
			Status:      payment.StatusPending,
			CreatedAt:   core.NowFunc(),
		}
	}

	_, err := repo.CreateProof(ctx, proof("p1", "r1", "abc"))
	require.NoError(t, err)

	// a concurrent upload of the same file that got past the service check
	_, err = repo.CreateProof(ctx, proof("p2", "r1", "abc"))
	assert.Equal(t, payment.ErrDuplicate, err)

	// the same file for another subject is fine
	_, err = repo.CreateProof(ctx, proof("p3", "r2", "abc"))
	assert.NoError(t, err)
}
