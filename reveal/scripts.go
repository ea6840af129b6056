package reveal

// Page-side functions evaluated through Rod. Each is a JS function
// expression; arguments are passed by Eval.
const (
	jsRevealReady = `() => typeof Reveal !== 'undefined' && Reveal.isReady()`

	jsTotalSlides = `() => Reveal.getTotalSlides()`
	jsSlideNumber = `() => window.slideNumber`
	jsIsLastSlide = `() => Reveal.isLastSlide()`
	jsSlideReady  = `() => !!window.slideReady`
	jsSlideNotes  = `() => Reveal.getSlideNotes()`
	jsLinks       = `() => window.getLinkElements()`

	// jsZoom scales the body around its centre and enlarges it so the
	// scaled deck still fills the viewport.
	jsZoom = `(zoom) => {
		document.body.style.width = '';
		document.body.style.height = '';
		document.body.style.transform = 'translate(-50%,-50%) scale(' + zoom + ') translate(50%,50%)';
		document.body.style.width = String(Math.ceil(document.body.clientWidth / zoom)) + 'px';
		document.body.style.height = String(Math.ceil(document.body.clientHeight / zoom)) + 'px';
	}`

	// jsInstallHooks defines getLinkElements and the readiness/step
	// counters. slidechanged fires when a transition starts and
	// slidetransitionend when it finishes; a fragment reveal fires
	// neither, so slideReady stays true.
	jsInstallHooks = `(selector) => {
		window.getLinkElements = function() {
			return Array.from(document.querySelectorAll(selector))
				.filter((elem) => elem.href)
				.map((elem) => {
					const bounds = elem.getBoundingClientRect();
					return {
						text: elem.textContent,
						href: elem.href,
						x: bounds.x,
						y: bounds.y,
						w: bounds.width,
						h: bounds.height,
						t: bounds.top + window.scrollY,
						l: bounds.left + window.scrollX,
					};
				});
		};
		Reveal.on('slidetransitionend', () => { window.slideReady = true; });
		Reveal.on('slidechanged', () => {
			window.slideReady = false;
			window.slideNumber += 1;
		});
		window.slideReady = true;
		window.slideNumber = 1;
	}`
)
