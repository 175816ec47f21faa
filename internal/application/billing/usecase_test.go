package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darbarboots/billing-api/internal/application/billing"
	"github.com/darbarboots/billing-api/internal/application/dto"
	"github.com/darbarboots/billing-api/internal/domain"
	"github.com/darbarboots/billing-api/internal/domain/entity"
	"github.com/darbarboots/billing-api/internal/domain/ledger"
	"github.com/darbarboots/billing-api/internal/domain/repository"
	"github.com/darbarboots/billing-api/pkg/logger"
)

// Stubs de repos para los casos de uso: embeben el puerto y solo implementan
// lo que el camino bajo prueba toca.

type stubInvoiceRepo struct {
	repository.InvoiceRepository
	invoice             *entity.Invoice
	list                []*entity.Invoice
	maxSeq              int64
	createErrs          []error // errores a devolver en Create, en orden
	created             []*entity.Invoice
	createdItems        []*entity.InvoiceItem
	base, gst, discount decimal.Decimal
	finalByParty        decimal.Decimal
}

func (s *stubInvoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		if err != nil {
			return err
		}
	}
	s.created = append(s.created, inv)
	return nil
}

func (s *stubInvoiceRepo) GetByID(_ context.Context, _ string) (*entity.Invoice, error) {
	return s.invoice, nil
}

func (s *stubInvoiceRepo) List(_ context.Context, _, _ int) ([]*entity.Invoice, error) {
	return s.list, nil
}

func (s *stubInvoiceRepo) CreateItem(_ context.Context, item *entity.InvoiceItem) error {
	s.createdItems = append(s.createdItems, item)
	return nil
}

func (s *stubInvoiceRepo) MaxSequence(_ context.Context, _ string) (int64, error) {
	return s.maxSeq, nil
}

func (s *stubInvoiceRepo) SumActiveItems(_ context.Context, _ string) (decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	return s.base, s.gst, s.discount, nil
}

func (s *stubInvoiceRepo) SumActiveFinalByParty(_ context.Context, _ string) (decimal.Decimal, error) {
	return s.finalByParty, nil
}

func (s *stubInvoiceRepo) UpdateTotals(_ context.Context, _ string, _ ledger.InvoiceTotals, _ time.Time) error {
	return nil
}

type stubPaymentRepo struct {
	repository.PaymentRepository
	maxSeq  int64
	created []*entity.Payment
}

func (s *stubPaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	s.created = append(s.created, p)
	return nil
}

func (s *stubPaymentRepo) MaxSequence(_ context.Context, _ string) (int64, error) {
	return s.maxSeq, nil
}

func (s *stubPaymentRepo) SumActiveByInvoice(_ context.Context, _ string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (s *stubPaymentRepo) SumActiveByParty(_ context.Context, _ string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type stubReturnRepo struct {
	repository.ReturnRepository
	maxSeq  int64
	created []*entity.Return
}

func (s *stubReturnRepo) Create(_ context.Context, r *entity.Return) error {
	s.created = append(s.created, r)
	return nil
}

func (s *stubReturnRepo) MaxSequence(_ context.Context, _ string) (int64, error) {
	return s.maxSeq, nil
}

func (s *stubReturnRepo) SumActiveByInvoice(_ context.Context, _ string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type stubPartyRepo struct {
	repository.PartyRepository
	party *entity.Party
}

func (s *stubPartyRepo) GetByID(_ context.Context, _ string) (*entity.Party, error) {
	return s.party, nil
}

func (s *stubPartyRepo) UpdatePendingBalance(_ context.Context, _ string, _ decimal.Decimal, _ time.Time) error {
	return nil
}

type stubChallanRepo struct {
	repository.ChallanRepository
	list []*entity.Challan
}

func (s *stubChallanRepo) List(_ context.Context, _, _ int) ([]*entity.Challan, error) {
	return s.list, nil
}

// stubTxRunner entrega los stubs como repos "ligados a la transacción" y
// cuenta cuántas transacciones se abrieron.
type stubTxRunner struct {
	inv   repository.InvoiceRepository
	pay   repository.PaymentRepository
	ret   repository.ReturnRepository
	party repository.PartyRepository
	calls int
}

func (s *stubTxRunner) RunBilling(_ context.Context, fn func(
	repository.InvoiceRepository,
	repository.PaymentRepository,
	repository.ReturnRepository,
	repository.ChallanRepository,
	repository.PartyRepository,
) error) error {
	s.calls++
	return fn(s.inv, s.pay, s.ret, nil, s.party)
}

func activeParty() *entity.Party {
	return &entity.Party{ID: "party-1", Name: "Darbar Boots", IsActive: true}
}

func activeInvoice(final string) *entity.Invoice {
	return &entity.Invoice{
		ID:          "inv-1",
		Number:      "INV-202608-000001",
		PartyID:     "party-1",
		Date:        time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC),
		FinalAmount: dec(final),
		BalanceDue:  dec(final),
		IsActive:    true,
	}
}

// Una factura sin líneas se rechaza antes de abrir transacción alguna: no
// consume número ni toca la base.
func TestCreateInvoice_SinLineasNoConsumeNumero(t *testing.T) {
	invRepo := &stubInvoiceRepo{}
	tx := &stubTxRunner{inv: invRepo, pay: &stubPaymentRepo{}, ret: &stubReturnRepo{}, party: &stubPartyRepo{party: activeParty()}}
	uc := billing.NewInvoiceUseCase(tx, invRepo, &stubPartyRepo{party: activeParty()}, newGenerator(), billing.NewLedgerAggregator(logger.Nop()), "INV")

	_, err := uc.Create(context.Background(), dto.CreateInvoiceRequest{PartyID: "party-1", Date: "2026-08-15"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyInvoice)
	assert.Zero(t, tx.calls)
	assert.Empty(t, invRepo.created)
}

// Una colisión de número hace rollback del intento completo y el reintento
// corre en una transacción nueva; el documento queda creado al segundo.
func TestCreateInvoice_ReintentaAnteDuplicado(t *testing.T) {
	invRepo := &stubInvoiceRepo{
		maxSeq:     5,
		createErrs: []error{domain.ErrDuplicate},
		base:       dec("100"),
	}
	partyRepo := &stubPartyRepo{party: activeParty()}
	tx := &stubTxRunner{inv: invRepo, pay: &stubPaymentRepo{}, ret: &stubReturnRepo{}, party: partyRepo}
	uc := billing.NewInvoiceUseCase(tx, invRepo, partyRepo, newGenerator(), billing.NewLedgerAggregator(logger.Nop()), "INV")

	resp, err := uc.Create(context.Background(), dto.CreateInvoiceRequest{
		PartyID: "party-1",
		Date:    "2026-08-15",
		Items: []dto.InvoiceItemRequest{
			{Description: "Botas", Quantity: dec("1"), Rate: dec("100")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, tx.calls)
	assert.Equal(t, "INV-202608-000006", resp.Number)
	assert.True(t, dec("100.00").Equal(resp.FinalAmount))
	require.Len(t, invRepo.created, 1)
}

// Un monto sub-centavo redondea a 0.00: no es un pago positivo y se rechaza
// antes de abrir transacción.
func TestCreatePayment_MontoSubCentavoSeRechaza(t *testing.T) {
	payRepo := &stubPaymentRepo{}
	tx := &stubTxRunner{inv: &stubInvoiceRepo{}, pay: payRepo, ret: &stubReturnRepo{}, party: &stubPartyRepo{party: activeParty()}}
	uc := billing.NewPaymentUseCase(tx, payRepo, &stubInvoiceRepo{}, &stubPartyRepo{party: activeParty()}, newGenerator(), billing.NewLedgerAggregator(logger.Nop()), "PAY")

	_, err := uc.Create(context.Background(), dto.CreatePaymentRequest{
		PartyID: "party-1",
		Amount:  dec("0.004"),
		Mode:    "cash",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Zero(t, tx.calls)
	assert.Empty(t, payRepo.created)
}

// Lo mismo para devoluciones manuales: 0.004 contra una factura de 100.00 no
// puede persistirse como devolución de 0.00.
func TestCreateReturn_MontoSubCentavoSeRechaza(t *testing.T) {
	invRepo := &stubInvoiceRepo{invoice: activeInvoice("100.00")}
	retRepo := &stubReturnRepo{}
	tx := &stubTxRunner{inv: invRepo, pay: &stubPaymentRepo{}, ret: retRepo, party: &stubPartyRepo{party: activeParty()}}
	uc := billing.NewReturnUseCase(tx, retRepo, invRepo, newGenerator(), billing.NewLedgerAggregator(logger.Nop()), "RET")

	_, err := uc.Create(context.Background(), dto.CreateReturnRequest{
		InvoiceID: "inv-1",
		Amount:    dec("0.004"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Zero(t, tx.calls)
	assert.Empty(t, retRepo.created)
}

// El tope de la devolución manual se verifica contra la factura releída dentro
// de la transacción: si otro request ya bajó el total vigente, esta devolución
// no puede apoyarse en la lectura vieja.
func TestCreateReturn_TopeSeVerificaDentroDeLaTransaccion(t *testing.T) {
	outer := &stubInvoiceRepo{invoice: activeInvoice("100.00")}
	inTx := &stubInvoiceRepo{invoice: activeInvoice("50.00")}
	retRepo := &stubReturnRepo{}
	tx := &stubTxRunner{inv: inTx, pay: &stubPaymentRepo{}, ret: retRepo, party: &stubPartyRepo{party: activeParty()}}
	uc := billing.NewReturnUseCase(tx, retRepo, outer, newGenerator(), billing.NewLedgerAggregator(logger.Nop()), "RET")

	_, err := uc.Create(context.Background(), dto.CreateReturnRequest{
		InvoiceID: "inv-1",
		Amount:    dec("80.00"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrReturnExceedsBalance)
	assert.Empty(t, retRepo.created)

	// Con el total vigente suficiente sí pasa.
	inTx.invoice = activeInvoice("100.00")
	resp, err := uc.Create(context.Background(), dto.CreateReturnRequest{
		InvoiceID: "inv-1",
		Amount:    dec("80.00"),
	})
	require.NoError(t, err)
	assert.True(t, dec("80.00").Equal(resp.Amount))
	require.Len(t, retRepo.created, 1)
}

// Los listados no resuelven el nombre del party por fila; usan el mismo
// marcador "N/A" que los caminos de detalle y PDF.
func TestListInvoices_PartyNameNA(t *testing.T) {
	invRepo := &stubInvoiceRepo{list: []*entity.Invoice{activeInvoice("100.00")}}
	uc := billing.NewInvoiceUseCase(nil, invRepo, &stubPartyRepo{}, newGenerator(), billing.NewLedgerAggregator(logger.Nop()), "INV")

	list, err := uc.List(context.Background(), 20, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "N/A", list[0].PartyName)
}

func TestListChallans_PartyNameNA(t *testing.T) {
	chRepo := &stubChallanRepo{list: []*entity.Challan{{
		ID:       "chn-1",
		Number:   "CHN-202608-000001",
		PartyID:  "party-1",
		Date:     time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC),
		IsActive: true,
	}}}
	uc := billing.NewChallanUseCase(nil, chRepo, &stubInvoiceRepo{}, &stubPartyRepo{}, newGenerator(), "CHN")

	list, err := uc.List(context.Background(), 20, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "N/A", list[0].PartyName)
}
