package account

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"retailbank-backoffice/internal/adapter/repository/mysql"
	domain "retailbank-backoffice/internal/domain/account"
	"retailbank-backoffice/internal/domain/fault"
	"retailbank-backoffice/internal/domain/identity"
	"retailbank-backoffice/internal/testutil/ledgerdb"
	"retailbank-backoffice/internal/testutil/notifymock"
	"retailbank-backoffice/internal/testutil/uowmock"
	"retailbank-backoffice/internal/usecase/notice"
	"retailbank-backoffice/internal/usecase/numbering"
	"retailbank-backoffice/pkg/clock"

	"github.com/sirupsen/logrus/hooks/test"
	"gorm.io/gorm"
)

const (
	alice = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	bob   = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

var now = time.Date(2026, time.October, 14, 10, 0, 0, 0, time.UTC)

type fixture struct {
	uc   *Usecase
	db   *gorm.DB
	sink *notifymock.Sink
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := ledgerdb.Open(t)
	log, _ := test.NewNullLogger()
	sink := &notifymock.Sink{}
	dir := &notifymock.Directory{Users: map[string]identity.BasicInfo{
		alice: {Name: "Alice", Email: "alice@example.com", IsActive: true},
		bob:   {Name: "Bob", Email: "bob@example.com", IsActive: true},
	}}
	uc := NewUsecase(mysql.NewGormUoW(db), numbering.New(0, log), notice.NewDispatcher(dir, sink, log), clock.Fixed(now), log)
	return fixture{uc: uc, db: db, sink: sink}
}

func (f fixture) account(t *testing.T, id uint64) *domain.Account {
	return ledgerdb.Reload[domain.Account](t, f.db, id)
}

func TestDeposit_CreditsAndRecordsOneRow(t *testing.T) {
	f := setup(t)
	a := ledgerdb.Account(t, f.db, alice, "100000001", "50", true)

	res, err := f.uc.Deposit(context.Background(), MovementInput{AccountNumber: "100000001", Amount: ledgerdb.D("25.50"), OperatedBy: bob})
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if !res.Balance.Equal(ledgerdb.D("75.50")) || !f.account(t, a.ID).Balance.Equal(ledgerdb.D("75.50")) {
		t.Fatalf("balance = %s", res.Balance)
	}
	rows := ledgerdb.Transactions(t, f.db, a.ID)
	if len(rows) != 1 || rows[0].Direction != domain.DirectionCredit || rows[0].OperationType != domain.OpDeposit || rows[0].OperatedByUserID != bob {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if msgs := f.sink.Messages(); len(msgs) != 1 || msgs[0].Email != "alice@example.com" {
		t.Fatalf("notifications: %+v", msgs)
	}
}

func TestWithdraw_Rejections(t *testing.T) {
	f := setup(t)
	a := ledgerdb.Account(t, f.db, alice, "100000001", "100", true)
	closed := ledgerdb.Account(t, f.db, alice, "100000002", "100", false)
	closed.IsActive = false
	f.db.Save(closed)

	tests := []struct {
		name   string
		in     MovementInput
		kind   fault.Kind
		target error
	}{
		{"insufficient", MovementInput{AccountNumber: "100000001", Amount: ledgerdb.D("100.01")}, fault.InsufficientFunds, domain.ErrInsufficientFunds},
		{"zero amount", MovementInput{AccountNumber: "100000001", Amount: ledgerdb.D("0")}, fault.InvalidAmount, fault.ErrInvalidAmount},
		{"negative amount", MovementInput{AccountNumber: "100000001", Amount: ledgerdb.D("-5")}, fault.InvalidAmount, fault.ErrInvalidAmount},
		{"missing", MovementInput{AccountNumber: "999999999", Amount: ledgerdb.D("1")}, fault.NotFound, domain.ErrNotFound},
		{"inactive", MovementInput{AccountNumber: "100000002", Amount: ledgerdb.D("1")}, fault.InactiveResource, domain.ErrInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Withdraw(context.Background(), tt.in)
			if !errors.Is(err, tt.target) || fault.KindOf(err) != tt.kind {
				t.Fatalf("want %v, got %v", tt.target, err)
			}
		})
	}
	if !f.account(t, a.ID).Balance.Equal(ledgerdb.D("100")) {
		t.Fatal("rejected withdrawals changed the balance")
	}
	if rows := ledgerdb.Transactions(t, f.db, a.ID); len(rows) != 0 {
		t.Fatalf("rejected withdrawals wrote %d rows", len(rows))
	}
	if len(f.sink.Messages()) != 0 {
		t.Fatal("rejections must not notify")
	}
}

func TestWithdraw_ConcurrentDebitsCannotOverdraw(t *testing.T) {
	f := setup(t)
	a := ledgerdb.Account(t, f.db, alice, "100000001", "100", true)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.uc.Withdraw(context.Background(), MovementInput{AccountNumber: "100000001", Amount: ledgerdb.D("70")})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrInsufficientFunds):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || rejected != 1 {
		t.Fatalf("succeeded=%d rejected=%d", succeeded, rejected)
	}
	if got := f.account(t, a.ID).Balance; !got.Equal(ledgerdb.D("30")) {
		t.Fatalf("balance = %s, want 30", got)
	}
}

func TestTransfer_ConservesMoneyWithTwoMatchingRows(t *testing.T) {
	f := setup(t)
	src := ledgerdb.Account(t, f.db, alice, "200000002", "500", true)
	dst := ledgerdb.Account(t, f.db, bob, "100000001", "20", true)

	res, err := f.uc.Transfer(context.Background(), TransferInput{
		Kind: KindBeneficiary, SourceNumber: "200000002", DestinationNumber: "100000001", Amount: ledgerdb.D("120.25"), OperatedBy: alice,
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	if got := f.account(t, src.ID).Balance; !got.Equal(ledgerdb.D("379.75")) {
		t.Errorf("source balance = %s", got)
	}
	if got := f.account(t, dst.ID).Balance; !got.Equal(ledgerdb.D("140.25")) {
		t.Errorf("destination balance = %s", got)
	}

	debits := ledgerdb.Transactions(t, f.db, src.ID)
	credits := ledgerdb.Transactions(t, f.db, dst.ID)
	if len(debits) != 1 || len(credits) != 1 {
		t.Fatalf("rows: %d debit, %d credit", len(debits), len(credits))
	}
	d, c := debits[0], credits[0]
	if d.Direction != domain.DirectionDebit || c.Direction != domain.DirectionCredit {
		t.Errorf("directions %s/%s", d.Direction, c.Direction)
	}
	if !d.Amount.Equal(c.Amount) || !d.Timestamp.Equal(c.Timestamp) || d.Reference != c.Reference || d.Reference != res.Reference {
		t.Errorf("legs do not match: %+v vs %+v", d, c)
	}
	if d.OperationType != domain.OpBeneficiaryTransfer || d.CounterpartyLabel != "****0001" {
		t.Errorf("debit leg = %+v", d)
	}
	if msgs := f.sink.Messages(); len(msgs) != 2 {
		t.Fatalf("want both parties notified, got %+v", msgs)
	}
}

func TestTransfer_Rejections(t *testing.T) {
	f := setup(t)
	a := ledgerdb.Account(t, f.db, alice, "100000001", "100", true)
	b := ledgerdb.Account(t, f.db, bob, "100000003", "0", true)

	tests := []struct {
		name string
		in   TransferInput
		want error
	}{
		{"same account", TransferInput{Kind: KindBeneficiary, SourceNumber: "100000001", DestinationNumber: "100000001", Amount: ledgerdb.D("1")}, domain.ErrSameAccount},
		{"express across owners", TransferInput{Kind: KindExpress, SourceNumber: "100000001", DestinationNumber: "100000003", Amount: ledgerdb.D("1")}, domain.ErrOwnerMismatch},
		{"insufficient", TransferInput{Kind: KindThirdParty, SourceNumber: "100000001", DestinationNumber: "100000003", Amount: ledgerdb.D("101")}, domain.ErrInsufficientFunds},
		{"missing destination", TransferInput{Kind: KindBeneficiary, SourceNumber: "100000001", DestinationNumber: "999999999", Amount: ledgerdb.D("1")}, domain.ErrNotFound},
		{"unknown kind", TransferInput{Kind: "wire", SourceNumber: "100000001", DestinationNumber: "100000003", Amount: ledgerdb.D("1")}, ErrUnknownKind},
		{"zero", TransferInput{Kind: KindBeneficiary, SourceNumber: "100000001", DestinationNumber: "100000003", Amount: ledgerdb.D("0")}, fault.ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.uc.Transfer(context.Background(), tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
	if !f.account(t, a.ID).Balance.Equal(ledgerdb.D("100")) || !f.account(t, b.ID).Balance.IsZero() {
		t.Fatal("rejected transfers moved money")
	}
	if len(ledgerdb.Transactions(t, f.db, a.ID)) != 0 {
		t.Fatal("rejected transfers wrote rows")
	}
}

func TestTransfer_ExpressBetweenOwnAccounts(t *testing.T) {
	f := setup(t)
	ledgerdb.Account(t, f.db, alice, "900000009", "10", true)
	ledgerdb.Account(t, f.db, alice, "100000001", "0", false)

	res, err := f.uc.Transfer(context.Background(), TransferInput{Kind: KindExpress, SourceNumber: "900000009", DestinationNumber: "100000001", Amount: ledgerdb.D("10")})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if !res.SourceBalance.IsZero() || res.SourceNumber != "900000009" {
		t.Fatalf("result = %+v", res)
	}
}

func TestOperations_CancelledContextTouchesNothing(t *testing.T) {
	f := setup(t)
	a := ledgerdb.Account(t, f.db, alice, "100000001", "100", true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := f.uc.Withdraw(ctx, MovementInput{AccountNumber: "100000001", Amount: ledgerdb.D("10")}); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if !f.account(t, a.ID).Balance.Equal(ledgerdb.D("100")) {
		t.Fatal("cancelled caller mutated the balance")
	}
}

func TestOperations_StoreFaultIsUnknown(t *testing.T) {
	log, _ := test.NewNullLogger()
	boom := errors.New("connection reset")
	uc := NewUsecase(uowmock.Failing(boom), numbering.New(0, log), nil, clock.System{}, log)

	_, err := uc.Deposit(context.Background(), MovementInput{AccountNumber: "100000001", Amount: ledgerdb.D("1")})
	if !errors.Is(err, boom) || fault.KindOf(err) != fault.Unknown {
		t.Fatalf("want store fault, got %v", err)
	}
}

func TestOpenAccounts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	if _, err := f.uc.OpenSecondary(ctx, OpenInput{OwnerID: alice}); !errors.Is(err, domain.ErrNoPrincipal) {
		t.Fatalf("secondary before principal: %v", err)
	}
	p, err := f.uc.OpenPrincipal(ctx, OpenInput{OwnerID: alice})
	if err != nil {
		t.Fatalf("OpenPrincipal: %v", err)
	}
	if len(p.AccountNumber) != 9 || !p.IsPrincipal || !p.IsActive || !p.Balance.IsZero() {
		t.Fatalf("principal = %+v", p)
	}
	if _, err := f.uc.OpenPrincipal(ctx, OpenInput{OwnerID: alice}); !errors.Is(err, domain.ErrPrincipalExists) {
		t.Fatalf("second principal: %v", err)
	}
	s, err := f.uc.OpenSecondary(ctx, OpenInput{OwnerID: alice})
	if err != nil || s.IsPrincipal || s.AccountNumber == p.AccountNumber {
		t.Fatalf("OpenSecondary = %+v, %v", s, err)
	}

	list, err := f.uc.ListByOwner(ctx, alice)
	if err != nil || len(list) != 2 || !list[0].IsPrincipal {
		t.Fatalf("ListByOwner = %+v, %v", list, err)
	}
}

func TestCancel_SweepsToPrincipalThenDeactivates(t *testing.T) {
	f := setup(t)
	principal := ledgerdb.Account(t, f.db, alice, "500000005", "10", true)
	secondary := ledgerdb.Account(t, f.db, alice, "100000001", "90.10", false)

	if _, err := f.uc.Cancel(context.Background(), CancelInput{AccountNumber: "500000005"}); !errors.Is(err, domain.ErrCancelPrincipal) {
		t.Fatalf("cancel principal: %v", err)
	}

	res, err := f.uc.Cancel(context.Background(), CancelInput{AccountNumber: "100000001", OperatedBy: bob})
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if !res.SweptAmount.Equal(ledgerdb.D("90.10")) || res.PrincipalNumber != "500000005" {
		t.Fatalf("result = %+v", res)
	}
	closed := f.account(t, secondary.ID)
	if closed.IsActive || !closed.Balance.IsZero() {
		t.Fatalf("secondary = %+v", closed)
	}
	if got := f.account(t, principal.ID).Balance; !got.Equal(ledgerdb.D("100.10")) {
		t.Fatalf("principal balance = %s", got)
	}
	sweep := ledgerdb.Transactions(t, f.db, secondary.ID)
	if len(sweep) != 1 || sweep[0].OperationType != domain.OpAccountSweep || sweep[0].Direction != domain.DirectionDebit {
		t.Fatalf("sweep rows = %+v", sweep)
	}

	if _, err := f.uc.Cancel(context.Background(), CancelInput{AccountNumber: "100000001"}); !errors.Is(err, domain.ErrInactive) {
		t.Fatalf("cancel twice: %v", err)
	}
}

func TestStatement(t *testing.T) {
	f := setup(t)
	ledgerdb.Account(t, f.db, alice, "100000001", "0", true)
	for _, amt := range []string{"1", "2", "3"} {
		if _, err := f.uc.Deposit(context.Background(), MovementInput{AccountNumber: "100000001", Amount: ledgerdb.D(amt)}); err != nil {
			t.Fatal(err)
		}
	}
	st, err := f.uc.Statement(context.Background(), "100000001", 2)
	if err != nil {
		t.Fatalf("Statement: %v", err)
	}
	if !st.Account.Balance.Equal(ledgerdb.D("6")) || len(st.Transactions) != 2 {
		t.Fatalf("statement = %+v", st)
	}
	if _, err := f.uc.Statement(context.Background(), "999999999", 0); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing statement: %v", err)
	}
}
