package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pizzatrack/internal/models"
	"pizzatrack/internal/repository"
)

func TestCreateOrderComputesTotalAndNumbers(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	first, err := e.orders.CreateOrder(ctx, sampleOrderInput())
	require.NoError(t, err)
	second, err := e.orders.CreateOrder(ctx, sampleOrderInput())
	require.NoError(t, err)

	assert.Equal(t, 60.0, first.Total)
	assert.Equal(t, models.StatusReceived, first.Status)
	assert.Equal(t, first.Number+1, second.Number)

	st := e.store.State()
	require.Len(t, st.Orders, 2)
	assert.Equal(t, second.ID, st.Orders[0].ID, "newest first")
}

func TestCreateOrderValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	cases := map[string]func(*CreateOrderInput){
		"no name":    func(in *CreateOrderInput) { in.CustomerName = "  " },
		"no address": func(in *CreateOrderInput) { in.DeliveryAddress = "" },
		"no items":   func(in *CreateOrderInput) { in.Items = nil },
		"zero qty":   func(in *CreateOrderInput) { in.Items[0].Quantity = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := sampleOrderInput()
			mutate(&in)
			_, err := e.orders.CreateOrder(ctx, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	in := sampleOrderInput()
	in.PaymentMethod = "cheque"
	_, err := e.orders.CreateOrder(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidPayment)

	in = sampleOrderInput()
	in.DelivererID = strPtr("ghost")
	_, err = e.orders.CreateOrder(ctx, in)
	assert.ErrorIs(t, err, ErrDelivererNotFound)

	assert.Empty(t, e.store.State().Orders)
	assert.Empty(t, e.hooks.events())
}

func TestCreateOrderNotifiesCustomerWhenProviderConfigured(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.configure(t, func(s *models.Settings) {
		s.WhatsAppProvider = models.WhatsAppEvolution
		s.WhatsAppAPIURL = "https://evo.test"
		s.WhatsAppInstanceName = "loja"
	})

	order, err := e.orders.CreateOrder(ctx, sampleOrderInput())
	require.NoError(t, err)

	sent := e.sender.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "5511911112222", sent[0].phone)
	assert.Contains(t, sent[0].text, "foi *recebido*")
	assert.Equal(t, "evolution", sent[0].cfg.Provider)

	stored, err := e.orders.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stored.WhatsappSent)
	cached, ok := e.store.Order(order.ID)
	require.True(t, ok)
	assert.True(t, cached.WhatsappSent)
}

func TestCreateOrderWithoutProviderSendsNothing(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	order, err := e.orders.CreateOrder(ctx, sampleOrderInput())
	require.NoError(t, err)
	assert.Empty(t, e.sender.messages())
	assert.False(t, order.WhatsappSent)
}

func TestUpdateStatusSendsMessagesAndEvents(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.configure(t, func(s *models.Settings) {
		s.WhatsAppProvider = models.WhatsAppOfficial
		s.WhatsAppAPIKey = "token"
		s.WhatsAppPhoneNumberID = "123"
		s.WebhookEnabled = true
		s.WebhookURL = "https://hooks.test/in"
	})

	order, err := e.orders.CreateOrder(ctx, sampleOrderInput())
	require.NoError(t, err)

	_, err = e.orders.UpdateStatus(ctx, order.ID, models.StatusPreparing)
	require.NoError(t, err)
	_, err = e.orders.UpdateStatus(ctx, order.ID, models.StatusDelivering)
	require.NoError(t, err)
	updated, err := e.orders.UpdateStatus(ctx, order.ID, models.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)

	sent := e.sender.messages()
	require.Len(t, sent, 3, "received, delivering and delivered; preparing sends nothing")
	assert.Contains(t, sent[1].text, "saiu para entrega")
	assert.Contains(t, sent[2].text, "foi *entregue!*")

	assert.Equal(t, []string{"order_created", "order_preparing", "order_delivering", "order_delivered"}, e.hooks.events())
	assert.Len(t, e.publisher.keys, 4)

	cached, ok := e.store.Order(order.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusDelivered, cached.Status)
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	order, err := e.orders.CreateOrder(ctx, sampleOrderInput())
	require.NoError(t, err)

	_, err = e.orders.UpdateStatus(ctx, order.ID, models.StatusDelivered)
	require.NoError(t, err)
	back, err := e.orders.UpdateStatus(ctx, order.ID, models.StatusReceived)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReceived, back.Status)

	_, err = e.orders.UpdateStatus(ctx, order.ID, "lost")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = e.orders.UpdateStatus(ctx, "missing", models.StatusPreparing)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestWebhookFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.hooks.err = errBoom
	e.configure(t, func(s *models.Settings) {
		s.WebhookEnabled = true
		s.WebhookURL = "https://hooks.test/in"
	})

	order, err := e.orders.CreateOrder(ctx, sampleOrderInput())
	require.NoError(t, err)
	_, err = e.orders.UpdateStatus(ctx, order.ID, models.StatusPreparing)
	require.NoError(t, err)
	assert.Len(t, e.hooks.events(), 2)
}

func TestWebhookDisabledPostsNothing(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.configure(t, func(s *models.Settings) {
		s.WebhookEnabled = false
		s.WebhookURL = "https://hooks.test/in"
	})

	_, err := e.orders.CreateOrder(ctx, sampleOrderInput())
	require.NoError(t, err)
	assert.Empty(t, e.hooks.events())
	assert.Equal(t, []string{"order_created"}, e.publisher.keys)
}

func TestDatabaseFailureLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	order, err := e.orders.CreateOrder(ctx, sampleOrderInput())
	require.NoError(t, err)
	before := e.store.State()

	sqlDB, err := e.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = e.orders.UpdateStatus(ctx, order.ID, models.StatusDelivering)
	require.Error(t, err)
	_, err = e.orders.CreateOrder(ctx, sampleOrderInput())
	require.Error(t, err)

	after := e.store.State()
	require.Len(t, after.Orders, len(before.Orders))
	assert.Equal(t, models.StatusReceived, after.Orders[0].Status)
}

func TestAssignDeliverer(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	e.addDeliverer(t, "d1")
	order, err := e.orders.CreateOrder(ctx, sampleOrderInput())
	require.NoError(t, err)

	assigned, err := e.orders.AssignDeliverer(ctx, order.ID, strPtr("d1"))
	require.NoError(t, err)
	require.NotNil(t, assigned.DelivererID)
	assert.Equal(t, "d1", *assigned.DelivererID)

	mine, err := e.orders.ListOrders(ctx, repository.OrderFilter{DelivererID: "d1"})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = e.orders.AssignDeliverer(ctx, order.ID, strPtr("ghost"))
	assert.ErrorIs(t, err, ErrDelivererNotFound)

	cleared, err := e.orders.AssignDeliverer(ctx, order.ID, strPtr(""))
	require.NoError(t, err)
	assert.Nil(t, cleared.DelivererID)
	cached, _ := e.store.Order(order.ID)
	assert.Nil(t, cached.DelivererID)
}

func TestUpdateOrderKeepsTotalUnlessSent(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	order, err := e.orders.CreateOrder(ctx, sampleOrderInput())
	require.NoError(t, err)

	in := UpdateOrderInput{CreateOrderInput: sampleOrderInput()}
	in.Notes = "sem cebola"
	in.Items[0].Quantity = 5
	updated, err := e.orders.UpdateOrder(ctx, order.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 60.0, updated.Total)
	assert.Equal(t, "sem cebola", updated.Notes)

	total := 99.9
	in.Total = &total
	updated, err = e.orders.UpdateOrder(ctx, order.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 99.9, updated.Total)
	assert.Equal(t, order.Number, updated.Number)
}

func TestDeleteOrder(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	order, err := e.orders.CreateOrder(ctx, sampleOrderInput())
	require.NoError(t, err)

	require.NoError(t, e.orders.DeleteOrder(ctx, order.ID))
	assert.Empty(t, e.store.State().Orders)
	assert.ErrorIs(t, e.orders.DeleteOrder(ctx, order.ID), ErrOrderNotFound)
	_, err = e.orders.GetOrder(ctx, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestWhatsAppLink(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	order, err := e.orders.CreateOrder(ctx, sampleOrderInput())
	require.NoError(t, err)

	link, err := e.orders.WhatsAppLink(ctx, order.ID, MessageDelivering)
	require.NoError(t, err)
	assert.Contains(t, link, "https://wa.me/5511911112222?text=")

	_, err = e.orders.WhatsAppLink(ctx, order.ID, "party")
	assert.ErrorIs(t, err, ErrValidation)
}
