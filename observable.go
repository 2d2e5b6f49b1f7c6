package rxcore

// ============================================================================
// Observable core
// ============================================================================

// observable is the single Observable implementation: every factory and
// operator is a subscribe function run against a fresh Producer.
type observable struct {
	op        string
	subscribe func(p *Producer) Disposable
}

func newObservable(op string, subscribe func(p *Producer) Disposable) Observable {
	return &observable{op: op, subscribe: subscribe}
}

// Subscribe creates a Producer for observer, runs the subscribe function
// synchronously and attaches whatever it returns as the upstream. A panic
// during subscription is delivered to observer as a *PanicError before
// Subscribe returns.
func (o *observable) Subscribe(observer Observer) Disposable {
	if observer == nil {
		observer = ObserverFuncs{}
	}

	p := NewProducer(observer)

	var upstream Disposable
	if err := SafeExecute(o.op, func() { upstream = o.subscribe(p) }); err != nil {
		p.OnError(err)
		return p
	}
	p.SetUpstream(upstream)
	return p
}

// Create builds a cold Observable from a subscribe function. The function
// receives the subscription's observer and returns the resource that is
// released on disposal; nil is allowed for sources that hold nothing.
//
// Emissions made after the subscription is disposed or terminated are
// dropped, so the function does not have to track either state itself.
func Create(subscribe func(observer Observer) Disposable) Observable {
	return newObservable("rxcore.Create", func(p *Producer) Disposable {
		return subscribe(p)
	})
}

// Defer calls factory for every subscriber and subscribes to the result.
func Defer(factory func() Observable) Observable {
	return newObservable("rxcore.Defer", func(p *Producer) Disposable {
		source, err := safeObservable("rxcore.Defer", factory)
		if err != nil {
			p.OnError(err)
			return nil
		}
		return source.Subscribe(p)
	})
}

// downstream adapts the three notification hooks of an operator to Observer.
// Any hook left nil forwards straight to the producer.
type downstream struct {
	p         *Producer
	next      func(value any)
	err       func(err error)
	completed func()
}

func (d *downstream) IsStopped() bool {
	return d.p.IsStopped()
}

func (d *downstream) OnNext(value any) {
	if d.next != nil {
		d.next(value)
		return
	}
	d.p.OnNext(value)
}

func (d *downstream) OnError(err error) {
	if d.err != nil {
		d.err(err)
		return
	}
	d.p.OnError(err)
}

func (d *downstream) OnCompleted() {
	if d.completed != nil {
		d.completed()
		return
	}
	d.p.OnCompleted()
}
